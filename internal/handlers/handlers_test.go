package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"market/analyzer/internal/catalog"
	"market/analyzer/internal/domain"
	"market/analyzer/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	rootID    = "069cb8d7-bbdd-47d3-ad8f-82ef4c269df1"
	phonesID  = "d515e43f-f3f6-4471-bb77-6b455017a2d2"
	jPhoneID  = "863e1a7a-1304-42ae-943b-179184c077e3"
	xomiaID   = "b1d8fd7d-2ae3-47d5-b2f9-0f094af800d4"
	unknownID = "11111111-2222-3333-4444-555555555555"
)

const importBody = `{
  "items": [
    {"type": "CATEGORY", "name": "Товары", "id": "` + rootID + `", "parentId": null},
    {"type": "CATEGORY", "name": "Смартфоны", "id": "` + phonesID + `", "parentId": "` + rootID + `"},
    {"type": "OFFER", "name": "jPhone 13", "id": "` + jPhoneID + `", "parentId": "` + phonesID + `", "price": 79999},
    {"type": "OFFER", "name": "Xomiа Readme 10", "id": "` + xomiaID + `", "parentId": "` + phonesID + `", "price": 59999}
  ],
  "updateDate": "2022-02-02T12:00:00.000Z"
}`

func newTestRouter() *gin.Engine {
	svc := service.NewService(catalog.NewService(), nil, nil)
	return NewRouter(New(svc))
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != "" {
		req, _ = http.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, path, nil)
	}
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) Error {
	t.Helper()
	var e Error
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

func TestImports_ThenNodes(t *testing.T) {
	router := newTestRouter()

	w := do(router, http.MethodPost, "/imports", importBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(router, http.MethodGet, "/nodes/"+rootID, "")
	require.Equal(t, http.StatusOK, w.Code)

	var view domain.ShopUnit
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "Товары", view.Name)
	assert.Equal(t, int64(69999), *view.Price)
	assert.Equal(t, "2022-02-02T12:00:00Z", view.Date)
	require.Len(t, view.Children, 1)
	phones := view.Children[0]
	require.Len(t, phones.Children, 2)
	assert.Equal(t, jPhoneID, phones.Children[0].ID.String())
	assert.Equal(t, xomiaID, phones.Children[1].ID.String())
}

func TestNodes_OfferChildrenIsNull(t *testing.T) {
	router := newTestRouter()
	require.Equal(t, http.StatusOK, do(router, http.MethodPost, "/imports", importBody).Code)

	w := do(router, http.MethodGet, "/nodes/"+jPhoneID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"children":null`)
	assert.Contains(t, w.Body.String(), `"price":79999`)
}

func TestImports_OfferWithoutPrice(t *testing.T) {
	router := newTestRouter()
	body := `{"items":[{"type":"OFFER","name":"X","id":"` + jPhoneID + `"}],"updateDate":"2022-02-02T12:00:00Z"}`

	w := do(router, http.MethodPost, "/imports", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, Error{Code: 400, Message: "Validation Failed"}, decodeError(t, w))
}

func TestImports_NonPositivePrice(t *testing.T) {
	router := newTestRouter()
	for _, price := range []string{"0", "-5"} {
		t.Run(price, func(t *testing.T) {
			body := `{"items":[{"type":"OFFER","name":"X","id":"` + jPhoneID + `","price":` + price + `}],"updateDate":"2022-02-02T12:00:00Z"}`

			w := do(router, http.MethodPost, "/imports", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, Error{Code: 400, Message: "Validation Failed"}, decodeError(t, w))
		})
	}

	assert.Equal(t, http.StatusNotFound, do(router, http.MethodGet, "/node/"+jPhoneID+"/statistic", "").Code)
	assert.JSONEq(t, `{"items":[]}`, do(router, http.MethodGet, "/sales?date=2022-02-02T13:00:00Z", "").Body.String())
}

func TestImports_MalformedInput(t *testing.T) {
	router := newTestRouter()
	cases := map[string]string{
		"bad json":     `{"items":`,
		"unknown type": `{"items":[{"type":"THING","name":"X","id":"` + jPhoneID + `"}],"updateDate":"2022-02-02T12:00:00Z"}`,
		"bad uuid":     `{"items":[{"type":"CATEGORY","name":"X","id":"nope"}],"updateDate":"2022-02-02T12:00:00Z"}`,
		"no date":      `{"items":[{"type":"CATEGORY","name":"X","id":"` + rootID + `"}]}`,
		"no name":      `{"items":[{"type":"CATEGORY","id":"` + rootID + `"}],"updateDate":"2022-02-02T12:00:00Z"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := do(router, http.MethodPost, "/imports", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestDelete(t *testing.T) {
	router := newTestRouter()
	require.Equal(t, http.StatusOK, do(router, http.MethodPost, "/imports", importBody).Code)

	w := do(router, http.MethodDelete, "/delete/"+xomiaID, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(router, http.MethodGet, "/nodes/"+xomiaID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, Error{Code: 404, Message: "Item not found"}, decodeError(t, w))

	w = do(router, http.MethodDelete, "/delete/"+unknownID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(router, http.MethodDelete, "/delete/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSales(t *testing.T) {
	router := newTestRouter()
	require.Equal(t, http.StatusOK, do(router, http.MethodPost, "/imports", importBody).Code)

	w := do(router, http.MethodGet, "/sales?date=2022-02-03T15:00:00.000Z", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp domain.ShopUnitStatisticResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Items, 2)

	w = do(router, http.MethodGet, "/sales?date=2022-02-05T15:00:00.000Z", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[]}`, w.Body.String())

	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodGet, "/sales", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodGet, "/sales?date=yesterday", "").Code)
}

func TestStatistic(t *testing.T) {
	router := newTestRouter()
	require.Equal(t, http.StatusOK, do(router, http.MethodPost, "/imports", importBody).Code)

	w := do(router, http.MethodGet, "/node/"+jPhoneID+"/statistic?dateStart=2022-02-02T12:00:00Z&dateEnd=2022-02-02T12:00:00Z", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp domain.ShopUnitStatisticResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, int64(79999), *resp.Items[0].Price)

	w = do(router, http.MethodGet, "/node/"+rootID+"/statistic", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, int64(69999), *resp.Items[0].Price)
}

func TestStatistic_Errors(t *testing.T) {
	router := newTestRouter()
	require.Equal(t, http.StatusOK, do(router, http.MethodPost, "/imports", importBody).Code)

	w := do(router, http.MethodGet, "/node/"+unknownID+"/statistic?dateStart=2022-02-03T00:00:00Z&dateEnd=2022-02-01T00:00:00Z", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodGet, "/node/"+unknownID+"/statistic", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(router, http.MethodGet, "/node/"+rootID+"/statistic?dateStart=soon", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndRequestID(t *testing.T) {
	router := newTestRouter()

	w := do(router, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	var health map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "ok", health["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter()
	require.Equal(t, http.StatusOK, do(router, http.MethodPost, "/imports", importBody).Code)

	w := do(router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "analyzer_imported_units_total")
}

func TestNoRoute(t *testing.T) {
	w := do(newTestRouter(), http.MethodGet, "/nowhere", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
