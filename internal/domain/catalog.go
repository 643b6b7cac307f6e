package domain

import "marketplace-admin/internal/query"

var (
	SellerStatuses = []string{"pending", "active", "suspended"}
	BannerTypes    = []string{"image", "video"}
)

// Catalog returns the entity kinds exposed by the admin API. Updates on
// seller, staff, banner and category upsert, since the dashboard creates
// them by id; the rest must already exist.
func Catalog() []*Resource {
	return []*Resource{
		Seller(), Staff(), Banner(), Category(), Message(),
		Order(), Review(), Product(), Question(), User(),
	}
}

func Seller() *Resource {
	return &Resource{
		Name:       "seller",
		Collection: "seller",
		Fields: []Field{
			{Name: "fullName", Type: String},
			{Name: "businessName", Type: String},
			{Name: "businessType", Type: String},
			{Name: "email", Type: String, Required: true},
			{Name: "phone", Type: String},
			{Name: "zipCode", Type: String},
			{Name: "address", Type: Any},
			{Name: "logo", Type: String},
			{Name: "status", Type: String, Enum: SellerStatuses},
			{Name: "password", Type: String, Secret: true},
		},
		Search: query.Spec{TextFields: []string{"fullName", "businessName", "zipCode", "email"}},
		Defaults: map[string]any{
			"status": "pending",
		},
		Upsert: true,
	}
}

func Staff() *Resource {
	return &Resource{
		Name:       "staff",
		Collection: "staff",
		Fields: []Field{
			{Name: "name", Type: String},
			{Name: "email", Type: String, Required: true, Unique: true},
			{Name: "phone", Type: String},
			{Name: "role", Type: String},
			{Name: "photo", Type: String},
			{Name: "status", Type: String},
		},
		Search:           query.Spec{TextFields: []string{"name", "email", "phone", "role"}},
		Defaults:         map[string]any{"status": "active"},
		Upsert:           true,
		DuplicateMessage: "Email already exists",
	}
}

func Banner() *Resource {
	return &Resource{
		Name:       "banner",
		Collection: "admin_banner",
		Fields: []Field{
			{Name: "title", Type: String},
			{Name: "type", Type: String, Enum: BannerTypes, Required: true},
			{Name: "url", Type: String},
			{Name: "link", Type: String},
			{Name: "default", Type: Bool},
			{Name: "status", Type: String},
		},
		Search:   query.Spec{TextFields: []string{"title", "type"}},
		Scopes:   map[string]string{"type": "type"},
		Defaults: map[string]any{"default": false},
		Upsert:   true,
	}
}

func Category() *Resource {
	return &Resource{
		Name:       "category",
		Collection: "category",
		Fields: []Field{
			{Name: "category", Type: String, Required: true, Unique: true},
			{Name: "image", Type: String},
			{Name: "description", Type: String},
			{Name: "status", Type: String},
		},
		Search:           query.Spec{TextFields: []string{"category"}},
		Upsert:           true,
		DuplicateMessage: "Category already exists",
	}
}

func Message() *Resource {
	return &Resource{
		Name:       "message",
		Collection: "message",
		Fields: []Field{
			{Name: "name", Type: String},
			{Name: "email", Type: String},
			{Name: "subject", Type: String},
			{Name: "message", Type: String, Required: true},
			{Name: "status", Type: String},
		},
		Search: query.Spec{TextFields: []string{"name", "email", "subject", "message"}},
		Stamps: []string{"date"},
	}
}

func Order() *Resource {
	return &Resource{
		Name:       "order",
		Collection: "order",
		Fields: []Field{
			{Name: "orderId", Type: Int, Required: true},
			{Name: "sellerId", Type: String},
			{Name: "userId", Type: String},
			{Name: "status", Type: String},
			{Name: "date", Type: String},
			{Name: "paymentMethod", Type: String},
			{Name: "products", Type: List},
			{Name: "totalAmount", Type: Number},
			{Name: "shippingAddress", Type: Object},
		},
		Search:   query.Spec{NumericFields: []string{"orderId"}},
		Scopes:   map[string]string{"sellerId": "sellerId", "userId": "userId"},
		Defaults: map[string]any{"status": "pending"},
	}
}

func Review() *Resource {
	return &Resource{
		Name:       "review",
		Collection: "review",
		Fields: []Field{
			{Name: "productInfo", Type: Object, Required: true},
			{Name: "userInfo", Type: Object},
			{Name: "reviewMessage", Type: String},
			{Name: "rating", Type: Number},
			{Name: "sellerId", Type: String},
			{Name: "userId", Type: String},
			{Name: "status", Type: String},
		},
		Search: query.Spec{TextFields: []string{"reviewMessage", "productInfo.productName", "userInfo.userName"}},
		Scopes: map[string]string{
			"sellerId":  "sellerId",
			"userId":    "userId",
			"productId": "productInfo.productId",
		},
	}
}

func Product() *Resource {
	return &Resource{
		Name:       "product",
		Collection: "product",
		Fields: []Field{
			{Name: "productName", Type: String, Required: true},
			{Name: "brand", Type: String},
			{Name: "category", Type: String},
			{Name: "description", Type: String},
			{Name: "price", Type: Number},
			{Name: "stock", Type: Int},
			{Name: "images", Type: List},
			{Name: "sellerId", Type: String},
			{Name: "status", Type: String},
		},
		Search:   query.Spec{TextFields: []string{"productName", "brand", "category"}},
		Scopes:   map[string]string{"sellerId": "sellerId", "category": "category"},
		Defaults: map[string]any{"status": "pending"},
	}
}

func Question() *Resource {
	return &Resource{
		Name:       "question",
		Collection: "product_question",
		Fields: []Field{
			{Name: "question", Type: Object, Required: true},
			{Name: "answer", Type: Any},
			{Name: "sellerId", Type: String},
			{Name: "status", Type: String},
		},
		Search: query.Spec{TextFields: []string{"question.userQuestion", "question.userInfo.userName"}},
		Scopes: map[string]string{
			"productId": "question.productInfo.productId",
			"sellerId":  "sellerId",
		},
	}
}

func User() *Resource {
	return &Resource{
		Name:       "user",
		Collection: "user",
		Fields: []Field{
			{Name: "fullName", Type: String},
			{Name: "email", Type: String, Required: true},
			{Name: "phone", Type: String},
			{Name: "photo", Type: String},
			{Name: "address", Type: Any},
			{Name: "role", Type: String},
			{Name: "status", Type: String},
		},
		Search:   query.Spec{TextFields: []string{"fullName", "email", "phone"}},
		Defaults: map[string]any{"status": "active"},
	}
}
