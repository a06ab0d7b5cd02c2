package telegram

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path"
	"strings"
	"sync"
	"testing"
)

type apiCall struct {
	Token  string
	Method string
	Form   url.Values
}

// fakeAPI is a minimal Bot API server. Methods listed in fail answer with a
// Telegram error.
type fakeAPI struct {
	server *httptest.Server

	mu    sync.Mutex
	calls []apiCall
	fail  map[string]bool
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()

	api := &fakeAPI{fail: make(map[string]bool)}
	api.server = httptest.NewServer(http.HandlerFunc(api.handle))
	t.Cleanup(api.server.Close)
	return api
}

func (f *fakeAPI) endpoint() string {
	return f.server.URL + "/bot%s/%s"
}

func (f *fakeAPI) options() Options {
	return Options{Endpoint: f.endpoint(), HTTPClient: f.server.Client()}
}

func (f *fakeAPI) handle(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseMultipartForm(10 << 20)
	if r.Form == nil {
		_ = r.ParseForm()
	}

	method := path.Base(r.URL.Path)
	token := strings.TrimPrefix(path.Dir(r.URL.Path), "/bot")

	f.mu.Lock()
	f.calls = append(f.calls, apiCall{Token: token, Method: method, Form: r.Form})
	failing := f.fail[method]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if failing {
		_, _ = fmt.Fprint(w, `{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`)
		return
	}

	switch method {
	case "getMe":
		_, _ = fmt.Fprint(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Moderator","username":"moderator_bot"}}`)
	case "sendMessage", "sendVideo", "sendPhoto":
		_, _ = fmt.Fprintf(w, `{"ok":true,"result":{"message_id":10,"date":0,"chat":{"id":%s,"type":"private"}}}`, r.Form.Get("chat_id"))
	case "sendMediaGroup":
		_, _ = fmt.Fprintf(w, `{"ok":true,"result":[{"message_id":11,"date":0,"chat":{"id":%s,"type":"private"}}]}`, r.Form.Get("chat_id"))
	case "getWebhookInfo":
		_, _ = fmt.Fprint(w, `{"ok":true,"result":{"url":"https://example.org/moderator","has_custom_certificate":false,"pending_update_count":0}}`)
	default:
		_, _ = fmt.Fprint(w, `{"ok":true,"result":true}`)
	}
}

func (f *fakeAPI) callsFor(method string) []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := make([]apiCall, 0)
	for _, call := range f.calls {
		if call.Method == method {
			result = append(result, call)
		}
	}
	return result
}
