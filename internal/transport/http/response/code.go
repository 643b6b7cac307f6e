package response

import "net/http"

// CodeMsgMap holds the default message for each status the API emits.
var CodeMsgMap = map[int]string{
	http.StatusOK:                  "OK",
	http.StatusCreated:             "Created",
	http.StatusNoContent:           "No results",
	http.StatusBadRequest:          "Bad Request",
	http.StatusUnauthorized:        "Unauthorized access",
	http.StatusForbidden:           "Forbidden access",
	http.StatusNotFound:            "Not Found",
	http.StatusTooManyRequests:     "Too many requests",
	http.StatusInternalServerError: "Internal Server Error",
	http.StatusServiceUnavailable:  "Server busy",
	http.StatusGatewayTimeout:      "Timeout",
}
