package census_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/suite"

	"github.com/ipcensus/ipcensus/census"
)

type HTTPHandlerTestSuite struct {
	suite.Suite

	fs      afero.Fs
	store   census.Store
	logger  *testLogger
	handler http.Handler
}

func (suite *HTTPHandlerTestSuite) SetupTest() {
	suite.fs = afero.NewMemMapFs()
	suite.store = census.NewFileStore(suite.fs, testSnapshotPath)
	suite.logger = &testLogger{}
	suite.handler = census.NewHTTPHandler(
		census.NewEngine(suite.store), suite.store, suite.logger)
}

func (suite *HTTPHandlerTestSuite) publishDefault() {
	snapshot := makeSnapshot("10.0.0.5", "10.0.0.7")

	stopped := snapshot["10.0.0.7"]
	stopped.ServiceStatus = census.StatusStopped
	snapshot["10.0.0.7"] = stopped

	suite.Require().NoError(suite.store.Publish(snapshot))
}

func (suite *HTTPHandlerTestSuite) get(params url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/?"+params.Encode(), nil)
	rec := httptest.NewRecorder()

	suite.handler.ServeHTTP(rec, req)

	return rec
}

func (suite *HTTPHandlerTestSuite) post(body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()

	suite.handler.ServeHTTP(rec, req)

	return rec
}

func (suite *HTTPHandlerTestSuite) TestGetHit() {
	suite.publishDefault()

	rec := suite.get(url.Values{"ipv4": []string{"10.0.0.5"}})

	suite.Equal(http.StatusOK, rec.Code)
	suite.Equal("application/json", rec.Header().Get("Content-Type"))

	record := census.ServiceRecord{}
	suite.NoError(json.Unmarshal(rec.Body.Bytes(), &record))
	suite.Equal("10.0.0.5", record.ServiceIPv4)
	suite.Equal(census.StatusActive, record.ServiceStatus)
}

func (suite *HTTPHandlerTestSuite) TestGetAbsentIP() {
	suite.publishDefault()

	rec := suite.get(url.Values{"ipv4": []string{"10.0.0.6"}})

	suite.Equal(http.StatusNotFound, rec.Code)
	suite.Contains(rec.Body.String(), "error")
}

func (suite *HTTPHandlerTestSuite) TestGetMissingParameter() {
	suite.publishDefault()

	rec := suite.get(url.Values{})

	suite.Equal(http.StatusBadRequest, rec.Code)
}

func (suite *HTTPHandlerTestSuite) TestGetMalformedIP() {
	suite.publishDefault()

	rec := suite.get(url.Values{"ipv4": []string{"not-an-ip"}})

	suite.Equal(http.StatusBadRequest, rec.Code)
}

func (suite *HTTPHandlerTestSuite) TestGetNotReady() {
	rec := suite.get(url.Values{"ipv4": []string{"10.0.0.5"}})

	suite.Equal(http.StatusServiceUnavailable, rec.Code)
}

func (suite *HTTPHandlerTestSuite) TestGetCorruptSnapshot() {
	suite.Require().NoError(
		afero.WriteFile(suite.fs, testSnapshotPath, []byte("{broken"), 0644))

	rec := suite.get(url.Values{"ipv4": []string{"10.0.0.5"}})

	suite.Equal(http.StatusInternalServerError, rec.Code)
	suite.NotEmpty(suite.logger.lookupErrs)
}

func (suite *HTTPHandlerTestSuite) TestGetFilterIrrelevantForActive() {
	suite.publishDefault()

	rec := suite.get(url.Values{
		"ipv4":           []string{"10.0.0.5"},
		"includeStopped": []string{"false"},
	})

	suite.Equal(http.StatusOK, rec.Code)
}

func (suite *HTTPHandlerTestSuite) TestGetStoppedFiltered() {
	suite.publishDefault()

	rec := suite.get(url.Values{
		"ipv4":           []string{"10.0.0.7"},
		"includeStopped": []string{"false"},
	})

	suite.Equal(http.StatusNotFound, rec.Code)
}

func (suite *HTTPHandlerTestSuite) TestGetBoolTokens() {
	suite.publishDefault()

	excluding := []string{"false", "FALSE", "0", "no", "off"}
	including := []string{"true", "1", "yes", "on", "", "banana"}

	for _, token := range excluding {
		rec := suite.get(url.Values{
			"ipv4":           []string{"10.0.0.7"},
			"includeStopped": []string{token},
		})
		suite.Equal(http.StatusNotFound, rec.Code, token)
	}

	for _, token := range including {
		rec := suite.get(url.Values{
			"ipv4":           []string{"10.0.0.7"},
			"includeStopped": []string{token},
		})
		suite.Equal(http.StatusOK, rec.Code, token)
	}
}

func (suite *HTTPHandlerTestSuite) TestPostOk() {
	suite.publishDefault()

	rec := suite.post(`{"ips": ["10.0.0.5", "10.0.0.6"]}`)

	suite.Equal(http.StatusOK, rec.Code)

	response := struct {
		Results map[string]*census.ServiceRecord `json:"results"`
	}{}
	suite.NoError(json.Unmarshal(rec.Body.Bytes(), &response))

	suite.Len(response.Results, 2)
	suite.NotNil(response.Results["10.0.0.5"])
	suite.Nil(response.Results["10.0.0.6"])
}

func (suite *HTTPHandlerTestSuite) TestPostFilters() {
	suite.publishDefault()

	rec := suite.post(`{"ips": ["10.0.0.7"], "include_stopped": false}`)

	suite.Equal(http.StatusOK, rec.Code)

	response := struct {
		Results map[string]*census.ServiceRecord `json:"results"`
	}{}
	suite.NoError(json.Unmarshal(rec.Body.Bytes(), &response))
	suite.Nil(response.Results["10.0.0.7"])
}

func (suite *HTTPHandlerTestSuite) TestPostBadContentType() {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"ips":["10.0.0.5"]}`))
	rec := httptest.NewRecorder()

	suite.handler.ServeHTTP(rec, req)

	suite.Equal(http.StatusUnsupportedMediaType, rec.Code)
}

func (suite *HTTPHandlerTestSuite) TestPostInvalidBody() {
	suite.publishDefault()

	for _, body := range []string{`{}`, `{"ips": []}`, `{"ips": ["10.0.0.5"], "extra": 1}`, `{[`} {
		rec := suite.post(body)
		suite.Equal(http.StatusBadRequest, rec.Code, body)
	}
}

func (suite *HTTPHandlerTestSuite) TestPostNotReady() {
	rec := suite.post(`{"ips": ["10.0.0.5"]}`)

	suite.Equal(http.StatusServiceUnavailable, rec.Code)
}

func (suite *HTTPHandlerTestSuite) TestStats() {
	suite.publishDefault()
	suite.get(url.Values{"ipv4": []string{"10.0.0.5"}})
	suite.get(url.Values{"ipv4": []string{"10.0.0.6"}})

	rec := suite.get(url.Values{})
	suite.Equal(http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	statsRec := httptest.NewRecorder()
	suite.handler.ServeHTTP(statsRec, req)

	suite.Equal(http.StatusOK, statsRec.Code)

	response := struct {
		Lookups struct {
			HitCount  uint64 `json:"hit_count"`
			MissCount uint64 `json:"miss_count"`
		} `json:"lookups"`
		Snapshot struct {
			Ready   bool `json:"ready"`
			Records int  `json:"records"`
		} `json:"snapshot"`
	}{}
	suite.NoError(json.Unmarshal(statsRec.Body.Bytes(), &response))

	suite.EqualValues(1, response.Lookups.HitCount)
	suite.EqualValues(1, response.Lookups.MissCount)
	suite.True(response.Snapshot.Ready)
	suite.Equal(2, response.Snapshot.Records)
}

func TestHTTPHandler(t *testing.T) {
	suite.Run(t, &HTTPHandlerTestSuite{})
}
