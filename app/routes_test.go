package app

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/slicehouse/catalog-service/config"
	"github.com/slicehouse/catalog-service/logger"
	"github.com/slicehouse/catalog-service/models/modelstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const routesSecret = "routes-secret"

func bearer(t *testing.T, role string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "tester", "role": role}).
		SignedString([]byte(routesSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := &config.Config{
		Auth:   config.AuthConfig{JWTSecret: routesSecret},
		Import: config.ImportConfig{Workers: 2, MaxUploadBytes: 1 << 20},
	}
	srv := httptest.NewServer(NewRouter(cfg, modelstest.Store(t), logger.Nop()))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, req *http.Request) (int, map[string]any) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp.StatusCode, body
}

func importRequest(t *testing.T, url, auth, feed string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "pizzas.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(feed))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, url+"/products/import", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", auth)
	return req
}

func jsonRequest(t *testing.T, method, url, auth, body string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	return req
}

func TestRouterEndToEnd(t *testing.T) {
	srv := newTestServer(t)
	admin := bearer(t, "admin")
	user := bearer(t, "user")
	feed := "title,price,stock,category,diet,pizza_type\n" +
		"Veggie Pizza,9.90,In Stock,Pizza,Vegetarian,Thin\n" +
		"Pepperoni,11.50,In Stock,Pizza,Meat,Thin\n" +
		"Garlic Bread,4.00,Out of Stock,Sides,Vegetarian,\n"

	status, _ := do(t, importRequest(t, srv.URL, user, feed))
	assert.Equal(t, http.StatusForbidden, status, "only admins import")

	status, body := do(t, importRequest(t, srv.URL, admin, feed))
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 3, body["successful"])

	status, body = do(t, jsonRequest(t, http.MethodGet, srv.URL+"/products?sortBy=price&order=DESC", user, ""))
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 3, body["total"])
	first := body["products"].([]any)[0].(map[string]any)
	assert.Equal(t, "PEPPERONI", first["sku"])

	status, _ = do(t, jsonRequest(t, http.MethodPost, srv.URL+"/products/sell", user, `{"skus":["VEGGIE-PIZZA","PEPPERONI"]}`))
	require.Equal(t, http.StatusOK, status)

	status, body = do(t, jsonRequest(t, http.MethodPost, srv.URL+"/products/sell", user, `{"skus":["VEGGIE-PIZZA"]}`))
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, body["error"], "out of stock")

	status, _ = do(t, jsonRequest(t, http.MethodPost, srv.URL+"/products/sell", user, `{"skus":["GHOST"]}`))
	assert.Equal(t, http.StatusNotFound, status)

	status, body = do(t, jsonRequest(t, http.MethodGet, srv.URL+"/products/recommend/VEGGIE-PIZZA?tally=true", user, ""))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"PEPPERONI"}, body["recommended_products"])
	assert.Len(t, body["ranked"], 1)

	status, body = do(t, jsonRequest(t, http.MethodGet, srv.URL+"/products/VEGGIE-PIZZA", user, ""))
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, body["stock"])
	assert.Equal(t, "Vegetarian", body["diet"])
}

func TestRouterLookups(t *testing.T) {
	srv := newTestServer(t)
	user := bearer(t, "user")

	status, body := do(t, jsonRequest(t, http.MethodPost, srv.URL+"/categories", user, `{"name":"Dessert"}`))
	require.Equal(t, http.StatusCreated, status)
	id := body["id"]

	status, body = do(t, jsonRequest(t, http.MethodPost, srv.URL+"/categories", user, `{"name":"Dessert"}`))
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, id, body["id"], "find-or-create returns the existing row")

	for _, path := range []string{"/categories", "/diets", "/pizza-types"} {
		req := jsonRequest(t, http.MethodGet, srv.URL+path, user, "")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestRouterRequiresToken(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/products", "/products/X", "/products/recommend/X", "/categories"} {
		status, body := do(t, jsonRequest(t, http.MethodGet, srv.URL+path, "", ""))
		assert.Equal(t, http.StatusUnauthorized, status, path)
		assert.Equal(t, "Unauthorized", body["error"], path)
	}

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
