package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/consignet/consignment_backend/internal/dto"
	"github.com/consignet/consignment_backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const testOperator = "ana"

var validatorsOnce sync.Once

// setupValidators installs the decimal rules on gin's validator, as main does.
func setupValidators() {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			panic("gin validator engine is not go-playground/validator")
		}
		if err := dto.RegisterValidators(v); err != nil {
			panic(err)
		}
	})
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// newTestRouter returns a gin engine with the identity middleware in place.
func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	setupValidators()
	router := gin.New()
	router.Use(middleware.OperatorIdentity())
	return router
}

// doJSON serves one request. An empty operator sends no X-Operator-ID header.
func doJSON(router http.Handler, method, url string, body any, operator string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			panic(err)
		}
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	if operator != "" {
		req.Header.Set(middleware.OperatorHeader, operator)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
