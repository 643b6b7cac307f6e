package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"marketplace-admin/internal/store"
)

func TestClearDefaultsInvalidatesCacheBeforeWrite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	core, logs := observer.New(zapcore.DebugLevel)
	h := &Banner{Store: store.NewMemoryStore(), Log: zap.New(core)}

	old := primitive.NewObjectID()
	_, err := h.coll().InsertOne(ctx, store.Document{"_id": old, "type": "video", "default": true})
	require.NoError(t, err)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/admin-create-banner", nil)
	next := primitive.NewObjectID()
	require.NoError(t, h.Hooks().BeforeCreate(c, store.Document{"_id": next, "type": "image", "default": true}))

	// the insert never happens; the cached default must already be gone
	doc, err := h.coll().FindOne(ctx, bson.M{"_id": old})
	require.NoError(t, err)
	assert.Equal(t, false, doc["default"])
	assert.Equal(t, 1, logs.FilterMessage("banner cache invalidated").Len())
}

func TestClearDefaultsSkipsCacheWhenNothingChanged(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	h := &Banner{Store: store.NewMemoryStore(), Log: zap.New(core)}

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/admin-create-banner", nil)
	require.NoError(t, h.Hooks().BeforeCreate(c, store.Document{"_id": primitive.NewObjectID(), "type": "image", "default": true}))
	assert.Zero(t, logs.FilterMessage("banner cache invalidated").Len())
}
