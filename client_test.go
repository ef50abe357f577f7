package go_wish

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stremovskyy/go-wish/consts"
	"github.com/stremovskyy/go-wish/format"
	sdklog "github.com/stremovskyy/go-wish/log"
	"github.com/stremovskyy/recorder"
)

func newTestClient(t *testing.T, baseURL string, opts ...Option) Wish {
	t.Helper()
	opts = append([]Option{
		WithKey("test-key"),
		WithBaseURL(baseURL),
		WithLogger(sdklog.NopLogger{}),
	}, opts...)
	client, err := NewClient(opts...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func jsonServer(t *testing.T, body string, check func(r *http.Request)) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts, &hits
}

func TestNewClientSelectsBaseURL(t *testing.T) {
	sandbox, err := NewClient(WithSandbox(true))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if sandbox.BaseURL() != consts.SandboxBaseURL {
		t.Fatalf("sandbox base url: got %q", sandbox.BaseURL())
	}
	if !sandbox.Sandbox() {
		t.Fatalf("expected sandbox client")
	}

	prod, err := NewClient(WithSandbox(false))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if prod.BaseURL() != consts.ProductionBaseURL {
		t.Fatalf("production base url: got %q", prod.BaseURL())
	}

	def, err := NewClient()
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if def.BaseURL() != consts.ProductionBaseURL {
		t.Fatalf("default base url: got %q", def.BaseURL())
	}
}

func TestNewClientRejectsBadOptions(t *testing.T) {
	if _, err := NewClient(WithTimeout(0)); err == nil {
		t.Fatalf("expected error for zero timeout")
	}
	if _, err := NewClient(WithHTTPClient(nil)); err == nil {
		t.Fatalf("expected error for nil http client")
	}
	if _, err := NewClient(WithBaseURL("")); err == nil {
		t.Fatalf("expected error for empty base url")
	}
}

func TestMissingKeyFailsWithoutNetworkIO(t *testing.T) {
	ts, hits := jsonServer(t, `{"code":0,"data":{}}`, nil)

	client, err := NewClient(WithBaseURL(ts.URL), WithLogger(sdklog.NopLogger{}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	ctx := context.Background()

	calls := map[string]func() error{
		"get": func() error {
			_, err := client.Get(ctx, consts.AuthTestPath, nil)
			return err
		},
		"post": func() error {
			_, err := client.Post(ctx, consts.VariantUpdateInventoryPath, url.Values{"sku": {"a"}})
			return err
		},
		"auth test": func() error {
			_, err := client.AuthTest(ctx)
			return err
		},
		"product": func() error {
			_, err := client.Products().Get(ctx, "1")
			return err
		},
		"variants": func() error {
			_, err := client.Variants().List(ctx, nil)
			return err
		},
		"order": func() error {
			_, err := client.Orders().GetJSON(ctx, "1")
			return err
		},
	}
	for name, call := range calls {
		err := call()
		if !IsParamError(err) || !IsMissingKey(err) {
			t.Fatalf("%s: expected missing key ParamError, got %T (%v)", name, err, err)
		}
	}
	if n := atomic.LoadInt32(hits); n != 0 {
		t.Fatalf("expected no HTTP calls, got %d", n)
	}
}

func TestProductJSONAndFormatted(t *testing.T) {
	body := `{"code":0,"message":"","data":{"Product":{"id":"p1","name":"shoe","is_promoted":"True","number_saves":"3","variants":[{"Variant":{"sku":"s1","price":"9.50","enabled":"False"}}]}}}`
	var gotQuery url.Values
	var gotPath string
	ts, _ := jsonServer(t, body, func(r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
	})
	client := newTestClient(t, ts.URL+"/api/v1")
	ctx := context.Background()

	env, err := client.Products().GetJSON(ctx, "p1")
	if err != nil {
		t.Fatalf("product json: %v", err)
	}
	if env.Code != 0 || len(env.Data) == 0 {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if gotPath != "/api/v1/product" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotQuery.Get("id") != "p1" || gotQuery.Get("key") != "test-key" {
		t.Fatalf("unexpected query %v", gotQuery)
	}

	rec, err := client.Products().Get(ctx, "p1")
	if err != nil {
		t.Fatalf("product: %v", err)
	}
	if rec["name"] != "shoe" || rec["is_promoted"] != true || rec["number_saves"] != int64(3) {
		t.Fatalf("unexpected product record: %+v", rec)
	}
	variants, err := format.Records(rec["variants"])
	if err != nil || len(variants) != 1 {
		t.Fatalf("unexpected variants %v (%v)", rec["variants"], err)
	}
	if variants[0]["price"] != 9.5 || variants[0]["enabled"] != false {
		t.Fatalf("unexpected variant record: %+v", variants[0])
	}
}

func TestOrderFormattedFlattensShipping(t *testing.T) {
	body := `{"code":0,"data":{"Order":{"order_id":"o1","order_time":"2014-02-21T19:21:12","order_total":"20.5","ShippingDetail":{"name":"Jane","city":"Oakland"}}}}`
	ts, _ := jsonServer(t, body, nil)
	client := newTestClient(t, ts.URL)

	rec, err := client.Orders().Get(context.Background(), "o1")
	if err != nil {
		t.Fatalf("order: %v", err)
	}
	if rec["city"] != "Oakland" || rec["name"] != "Jane" {
		t.Fatalf("shipping detail not flattened: %+v", rec)
	}
	if _, ok := rec["ShippingDetail"]; ok {
		t.Fatalf("shipping detail must be removed: %+v", rec)
	}
	if when, ok := rec.Time("order_time"); !ok || when.Year() != 2014 {
		t.Fatalf("unexpected order_time %v", rec["order_time"])
	}
	if rec["order_total"] != 20.5 {
		t.Fatalf("unexpected order_total %v", rec["order_total"])
	}
}

func TestAPIErrorCarriesCodeAndMessage(t *testing.T) {
	ts, _ := jsonServer(t, `{"code":5,"message":"X","data":{}}`, nil)
	client := newTestClient(t, ts.URL)

	_, err := client.Variants().Get(context.Background(), "sku-1")
	ae, ok := IsAPIError(err)
	if !ok {
		t.Fatalf("expected APIError, got %T (%v)", err, err)
	}
	if ae.Code != 5 || ae.Message != "X" {
		t.Fatalf("unexpected api error: %+v", ae)
	}
	var he *HTTPError
	if errors.As(err, &he) {
		t.Fatalf("2xx api error must not be an HTTPError")
	}
}

func TestNotFoundAndUnauthorizedPredicates(t *testing.T) {
	ts, _ := jsonServer(t, `{"code":1004,"message":"not found"}`, nil)
	client := newTestClient(t, ts.URL)
	_, err := client.Orders().Get(context.Background(), "missing")
	if !IsNotFound(err) || IsUnauthorized(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	ts2, _ := jsonServer(t, `{"code":4000,"message":"Unauthorized"}`, nil)
	client2 := newTestClient(t, ts2.URL)
	_, err = client2.AuthTest(context.Background())
	if !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestMalformedEnvelopeIsServerError(t *testing.T) {
	bodies := []string{
		`{"message":"no code here"}`,
		`{"code":null}`,
		`{"code":"abc"}`,
		`not json at all`,
		`[1,2,3]`,
	}
	for _, body := range bodies {
		ts, _ := jsonServer(t, body, nil)
		client := newTestClient(t, ts.URL)

		_, err := client.AuthTestJSON(context.Background())
		var se *ServerError
		if !errors.As(err, &se) {
			t.Fatalf("body %q: expected ServerError, got %T (%v)", body, err, err)
		}
		if string(se.Body) != body {
			t.Fatalf("body %q: server error must carry the raw body, got %q", body, se.Body)
		}
	}
}

func TestFormattedListRejectsNonListData(t *testing.T) {
	ts, _ := jsonServer(t, `{"code":0,"data":{"Product":{"id":"1"}}}`, nil)
	client := newTestClient(t, ts.URL)

	_, err := client.Products().List(context.Background(), nil)
	var se *ServerError
	if !errors.As(err, &se) {
		t.Fatalf("expected ServerError, got %T (%v)", err, err)
	}
}

func TestNon2xxIsHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":1001,"message":"Invalid parameter"}`))
	}))
	defer ts.Close()
	client := newTestClient(t, ts.URL)

	_, err := client.Products().Get(context.Background(), "p1")
	var he *HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected HTTPError, got %T (%v)", err, err)
	}
	if he.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", he.StatusCode)
	}
	ae, ok := IsAPIError(err)
	if !ok || ae.Code != 1001 {
		t.Fatalf("expected wrapped APIError with code 1001, got %v", err)
	}
}

func TestTimeoutIsHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer ts.Close()
	client := newTestClient(t, ts.URL, WithTimeout(50*time.Millisecond))

	_, err := client.AuthTest(context.Background())
	var he *HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected HTTPError, got %T (%v)", err, err)
	}
	if he.StatusCode != 0 || he.Err == nil {
		t.Fatalf("timeout must be a transport error without status: %+v", he)
	}
}

func TestListPaginationDefaults(t *testing.T) {
	var got []url.Values
	ts, _ := jsonServer(t, `{"code":0,"data":[]}`, func(r *http.Request) {
		got = append(got, r.URL.Query())
	})
	client := newTestClient(t, ts.URL)
	ctx := context.Background()

	if _, err := client.Products().List(ctx, nil); err != nil {
		t.Fatalf("products: %v", err)
	}
	if _, err := client.Variants().ListJSON(ctx, &Page{}); err != nil {
		t.Fatalf("variants: %v", err)
	}
	if _, err := client.Products().List(ctx, &Page{Start: 100, Limit: 10}); err != nil {
		t.Fatalf("products page: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(got))
	}
	for i := 0; i < 2; i++ {
		if got[i].Get("start") != "0" || got[i].Get("limit") != "50" {
			t.Fatalf("request %d: expected start=0 limit=50, got %v", i, got[i])
		}
	}
	if got[2].Get("start") != "100" || got[2].Get("limit") != "10" {
		t.Fatalf("unexpected explicit page %v", got[2])
	}
}

func TestOrdersListSendsSince(t *testing.T) {
	var got url.Values
	ts, _ := jsonServer(t, `{"code":0,"data":[{"Order":{"order_id":"1"}},{"Order":{"order_id":"2"}}]}`, func(r *http.Request) {
		got = r.URL.Query()
	})
	client := newTestClient(t, ts.URL)

	since := time.Date(2015, 3, 4, 5, 6, 7, 0, time.UTC)
	orders, err := client.Orders().List(context.Background(), nil, since)
	if err != nil {
		t.Fatalf("orders: %v", err)
	}
	if len(orders) != 2 || orders[0]["order_id"] != "1" || orders[1]["order_id"] != "2" {
		t.Fatalf("unexpected orders %+v", orders)
	}
	if got.Get("since") != "2015-03-04T05:06:07" {
		t.Fatalf("unexpected since %q", got.Get("since"))
	}
}

func TestEmptyIdentifiersAreParamErrors(t *testing.T) {
	ts, hits := jsonServer(t, `{"code":0}`, nil)
	client := newTestClient(t, ts.URL)
	ctx := context.Background()

	if _, err := client.Products().Get(ctx, ""); !IsParamError(err) {
		t.Fatalf("expected ParamError for empty id, got %v", err)
	}
	if _, err := client.Variants().GetJSON(ctx, " "); !IsParamError(err) {
		t.Fatalf("expected ParamError for empty sku, got %v", err)
	}
	if err := client.Variants().UpdateInventory(ctx, "sku", -1); !IsParamError(err) {
		t.Fatalf("expected ParamError for negative inventory, got %v", err)
	}
	if n := atomic.LoadInt32(hits); n != 0 {
		t.Fatalf("expected no HTTP calls, got %d", n)
	}
}

func TestBuildURLKeepsQueryAndForcesKey(t *testing.T) {
	client := newTestClient(t, "https://example.com/api/v1?lang=en")

	full, err := client.BuildURL("/product/multi-get", url.Values{
		"start": {"5"},
		"tag":   {"a", "b"},
		"key":   {"caller-key"},
	})
	if err != nil {
		t.Fatalf("build url: %v", err)
	}
	u, err := url.Parse(full)
	if err != nil {
		t.Fatalf("parse built url: %v", err)
	}
	if u.Path != "/api/v1/product/multi-get" {
		t.Fatalf("unexpected path %q", u.Path)
	}
	q := u.Query()
	if q.Get("lang") != "en" || q.Get("start") != "5" {
		t.Fatalf("query parameters dropped: %v", q)
	}
	if tags := q["tag"]; len(tags) != 2 || tags[0] != "a" || tags[1] != "b" {
		t.Fatalf("multi-value parameter dropped: %v", q)
	}
	if keys := q["key"]; len(keys) != 1 || keys[0] != "test-key" {
		t.Fatalf("key must be the configured value, got %v", keys)
	}
}

func TestPostSendsKeyInBody(t *testing.T) {
	var gotQuery, gotForm url.Values
	var gotMethod string
	ts, _ := jsonServer(t, `{"code":0,"data":{}}`, func(r *http.Request) {
		gotMethod = r.Method
		gotQuery = r.URL.Query()
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotForm = r.PostForm
	})
	client := newTestClient(t, ts.URL)

	if err := client.Variants().UpdateInventory(context.Background(), "red-shoe-11", 7); err != nil {
		t.Fatalf("update inventory: %v", err)
	}
	if gotMethod != http.MethodPost {
		t.Fatalf("unexpected method %q", gotMethod)
	}
	if gotQuery.Has("key") {
		t.Fatalf("key must not be sent in the query string: %v", gotQuery)
	}
	if gotForm.Get("key") != "test-key" || gotForm.Get("sku") != "red-shoe-11" || gotForm.Get("inventory") != "7" {
		t.Fatalf("unexpected form %v", gotForm)
	}
}

func TestPostDoesNotMutateCallerForm(t *testing.T) {
	ts, _ := jsonServer(t, `{"code":0}`, nil)
	client := newTestClient(t, ts.URL)

	form := url.Values{"sku": {"a"}}
	if _, err := client.Post(context.Background(), "/variant/update", form); err != nil {
		t.Fatalf("post: %v", err)
	}
	if form.Has("key") {
		t.Fatalf("caller form was mutated: %v", form)
	}
}

func TestDryRunSkipsHTTPCall(t *testing.T) {
	ts, hits := jsonServer(t, `{"code":0}`, nil)
	client := newTestClient(t, ts.URL)

	var (
		called    bool
		gotMethod string
		gotURL    string
		gotForm   url.Values
	)
	err := client.Variants().UpdateInventory(context.Background(), "sku-1", 3, DryRun(func(method string, rawURL string, payload any) {
		called = true
		gotMethod = method
		gotURL = rawURL
		gotForm, _ = payload.(url.Values)
	}))
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}

	if !called {
		t.Fatalf("dry run handler was not called")
	}
	if gotMethod != http.MethodPost {
		t.Fatalf("unexpected method: %q", gotMethod)
	}
	if gotURL != ts.URL+"/variant/update-inventory" {
		t.Fatalf("unexpected url: %q", gotURL)
	}
	if gotForm.Get("sku") != "sku-1" || gotForm.Get("key") != "test-key" {
		t.Fatalf("unexpected payload: %v", gotForm)
	}
	if n := atomic.LoadInt32(hits); n != 0 {
		t.Fatalf("expected no HTTP calls, got %d", n)
	}

	rec, err := client.Products().Get(context.Background(), "p1", DryRun())
	if err != nil || rec != nil {
		t.Fatalf("default dry run must return nil, nil; got %v, %v", rec, err)
	}
}

func TestDefaultDryRunMasksKey(t *testing.T) {
	logger := &testLogger{level: sdklog.LevelDebug}
	client, err := NewClient(WithKey("s3cr3t"), WithLogger(logger))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if _, err := client.AuthTestJSON(context.Background(), DryRun()); err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if logger.infoCount == 0 {
		t.Fatalf("expected dry run to be logged")
	}
	for _, line := range logger.lines {
		if strings.Contains(line, "s3cr3t") {
			t.Fatalf("key leaked into log line %q", line)
		}
	}
}

func TestNewClientWithRecorderRecordsTraffic(t *testing.T) {
	rec := &testRecorder{}
	ts, _ := jsonServer(t, `{"code":0,"data":{"merchant_id":"m-1"}}`, nil)

	client, err := NewClientWithRecorder(rec,
		WithKey("test-key"),
		WithBaseURL(ts.URL),
		WithLogger(sdklog.NopLogger{}),
	)
	if err != nil {
		t.Fatalf("new client with recorder: %v", err)
	}

	merchant, err := client.AuthTest(context.Background())
	if err != nil {
		t.Fatalf("auth test: %v", err)
	}
	if merchant.ID != "m-1" {
		t.Fatalf("unexpected merchant %+v", merchant)
	}

	if rec.requestCount != 1 {
		t.Fatalf("expected 1 recorded request, got %d", rec.requestCount)
	}
	if rec.responseCount != 1 {
		t.Fatalf("expected 1 recorded response, got %d", rec.responseCount)
	}
	if rec.errorCount != 0 {
		t.Fatalf("expected 0 recorded errors, got %d", rec.errorCount)
	}
	if strings.Contains(rec.lastURL, "test-key") {
		t.Fatalf("key leaked into recorded url %q", rec.lastURL)
	}
}

func TestSetLogLevelEnablesDebugLogging(t *testing.T) {
	logger := &testLogger{level: sdklog.LevelInfo}
	ts, _ := jsonServer(t, `{"code":0,"data":{}}`, nil)

	client, err := NewClient(
		WithKey("test-key"),
		WithLogger(logger),
		WithBaseURL(ts.URL),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	// Before enabling debug there should be no debug logs.
	if _, err := client.AuthTestJSON(context.Background()); err != nil {
		t.Fatalf("auth test before debug: %v", err)
	}
	if logger.debugCount != 0 {
		t.Fatalf("expected 0 debug logs before enabling debug, got %d", logger.debugCount)
	}

	client.SetLogLevel(sdklog.LevelDebug)

	if _, err := client.AuthTestJSON(context.Background()); err != nil {
		t.Fatalf("auth test after debug: %v", err)
	}
	if logger.debugCount == 0 {
		t.Fatalf("expected debug logs after enabling debug level")
	}
	for _, line := range logger.lines {
		if strings.Contains(line, "test-key") {
			t.Fatalf("key leaked into log line %q", line)
		}
	}
}

func TestFutureAndCallbackDeliverResults(t *testing.T) {
	ts, _ := jsonServer(t, `{"code":5,"message":"X"}`, nil)
	client := newTestClient(t, ts.URL)
	ctx := context.Background()

	f := Go(ctx, func(ctx context.Context) (*Envelope, error) {
		return client.AuthTestJSON(ctx)
	})
	env, err := f.Wait(ctx)
	if env != nil {
		t.Fatalf("expected nil envelope, got %+v", env)
	}
	if ae, ok := IsAPIError(err); !ok || ae.Code != 5 {
		t.Fatalf("expected APIError from future, got %v", err)
	}

	done := make(chan error, 1)
	Callback(ctx, func(ctx context.Context) (*Merchant, error) {
		return client.AuthTest(ctx)
	}, func(m *Merchant, err error) {
		done <- err
	})
	select {
	case err := <-done:
		if _, ok := IsAPIError(err); !ok {
			t.Fatalf("expected APIError in callback, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("callback was never called")
	}

	panicky := Go(ctx, func(context.Context) (int, error) {
		panic("boom")
	})
	if _, err := panicky.Wait(ctx); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected panic to surface as error, got %v", err)
	}
}

func TestFutureWaitHonorsContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	f := Go(context.Background(), func(context.Context) (int, error) {
		<-release
		return 1, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := f.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

type testRecorder struct {
	requestCount  int
	responseCount int
	errorCount    int
	lastURL       string
}

func (t *testRecorder) RecordRequest(_ context.Context, _ *string, _ string, _ []byte, tags map[string]string) error {
	t.requestCount++
	t.lastURL = tags["url"]
	return nil
}

func (t *testRecorder) RecordResponse(context.Context, *string, string, []byte, map[string]string) error {
	t.responseCount++
	return nil
}

func (t *testRecorder) RecordError(context.Context, *string, string, error, map[string]string) error {
	t.errorCount++
	return nil
}

func (t *testRecorder) RecordMetrics(context.Context, *string, string, map[string]string, map[string]string) error {
	return nil
}

func (t *testRecorder) GetRequest(context.Context, string) ([]byte, error) {
	return nil, nil
}

func (t *testRecorder) GetResponse(context.Context, string) ([]byte, error) {
	return nil, nil
}

func (t *testRecorder) FindByTag(context.Context, string) ([]string, error) {
	return nil, nil
}

func (t *testRecorder) Async() recorder.AsyncRecorder {
	return nil
}

type testLogger struct {
	level      sdklog.Level
	debugCount int
	infoCount  int
	warnCount  int
	errCount   int
	lines      []string
}

func (t *testLogger) SetLevel(level sdklog.Level) {
	t.level = level
}

func (t *testLogger) keep(format string, args ...any) {
	t.lines = append(t.lines, fmt.Sprintf(format, args...))
}

func (t *testLogger) Debugf(format string, args ...any) {
	if t.level <= sdklog.LevelDebug {
		t.debugCount++
		t.keep(format, args...)
	}
}

func (t *testLogger) Infof(format string, args ...any) {
	if t.level <= sdklog.LevelInfo {
		t.infoCount++
		t.keep(format, args...)
	}
}

func (t *testLogger) Warnf(format string, args ...any) {
	if t.level <= sdklog.LevelWarn {
		t.warnCount++
		t.keep(format, args...)
	}
}

func (t *testLogger) Errorf(format string, args ...any) {
	if t.level <= sdklog.LevelError {
		t.errCount++
		t.keep(format, args...)
	}
}
