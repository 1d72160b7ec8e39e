package host

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHost() *Host {
	return New(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestDoAction_PriorityOrder(t *testing.T) {
	h := newTestHost()
	var got []string
	h.AddAction("init", func() { got = append(got, "late") }, 20)
	h.AddAction("init", func() { got = append(got, "first") })
	h.AddAction("init", func() { got = append(got, "early") }, 1)
	h.AddAction("init", func() { got = append(got, "second") })

	h.DoAction("init")

	assert.Equal(t, []string{"early", "first", "second", "late"}, got)
	assert.Equal(t, 1, h.DidAction("init"))
	assert.Equal(t, 0, h.DidAction("admin_init"))
}

func TestDoAction_CallbackAddedDuringRun(t *testing.T) {
	h := newTestHost()
	var got []string
	h.AddAction("init", func() {
		got = append(got, "outer")
		h.AddAction("init", func() { got = append(got, "added-later-priority") }, 50)
		h.AddAction("init", func() { got = append(got, "added-same-priority") })
		h.AddAction("init", func() { got = append(got, "added-earlier-priority") }, 1)
	})

	h.DoAction("init")

	// Callbacks below the current priority missed this run.
	assert.Equal(t, []string{"outer", "added-same-priority", "added-later-priority"}, got)
}

func TestOnce(t *testing.T) {
	h := newTestHost()
	count := 0
	h.Once("init", func() { count++ })

	h.DoAction("init")
	h.DoAction("init")

	assert.Equal(t, 1, count)
	assert.Equal(t, 2, h.DidAction("init"))
}

func TestAddActionOrRun(t *testing.T) {
	h := newTestHost()
	ran := 0
	h.AddActionOrRun("init", func() { ran++ })
	assert.Equal(t, 0, ran, "queued before the hook fires")

	h.DoAction("init")
	assert.Equal(t, 1, ran)

	h.AddActionOrRun("init", func() { ran += 10 })
	assert.Equal(t, 11, ran, "runs immediately after the hook has fired")
}

func TestAddActionOrRun_DuringRunQueues(t *testing.T) {
	h := newTestHost()
	var got []string
	h.AddAction("init", func() {
		h.AddActionOrRun("init", func() { got = append(got, "nested") })
		got = append(got, "outer")
	})

	h.DoAction("init")

	assert.Equal(t, []string{"outer", "nested"}, got)
}

func TestOnceOrRun(t *testing.T) {
	h := newTestHost()
	ran := 0
	h.OnceOrRun("init", func() { ran++ })
	h.DoAction("init")
	h.DoAction("init")
	assert.Equal(t, 1, ran, "subscribed before the hook: runs once")

	late := 0
	h.OnceOrRun("init", func() { late++ })
	assert.Equal(t, 1, late, "subscribed after the hook: runs right away")
	h.DoAction("init")
	assert.Equal(t, 1, late)
}

func TestApplyFilters(t *testing.T) {
	h := newTestHost()
	h.AddFilter("title", func(v any) any { return v.(string) + "!" }, 20)
	h.AddFilter("title", func(v any) any { return strings.ToUpper(v.(string)) })

	assert.Equal(t, "HELLO!", h.ApplyFilters("title", "hello"))
	assert.Equal(t, "unchanged", h.ApplyFilters("other", "unchanged"))
}

func TestShortcodes(t *testing.T) {
	h := newTestHost()
	h.AddShortcode("hello", func(attrs map[string]string) string { return "hi " + attrs["name"] })

	out, err := h.DoShortcode("hello", map[string]string{"name": "ann"})
	require.NoError(t, err)
	assert.Equal(t, "hi ann", out)

	_, err = h.DoShortcode("missing", nil)
	assert.Error(t, err)
}

func TestAjax(t *testing.T) {
	h := newTestHost()
	h.AddAjax("ping", func(req map[string]string) Response {
		return Response{Success: true, Data: req["v"]}
	})

	for _, public := range []bool{true, false} {
		resp, err := h.HandleAjax("ping", public, map[string]string{"v": "pong"})
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, "pong", resp.Data)
	}

	_, err := h.HandleAjax("missing", true, nil)
	assert.Error(t, err)
}

func TestRest(t *testing.T) {
	h := newTestHost()
	h.RegisterRoute("atom/v1", "/hello", func(params map[string]string) (any, int) {
		return map[string]string{"hello": params["name"]}, http.StatusCreated
	})

	body, status, err := h.HandleRest("/atom/v1/hello", map[string]string{"name": "bo"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, map[string]string{"hello": "bo"}, body)

	_, _, err = h.HandleRest("/atom/v1/missing", nil)
	assert.Error(t, err)
}

func TestSaveSettings(t *testing.T) {
	ctx := context.Background()
	h := newTestHost()
	h.RegisterSetting("general", "site_title", "text")
	h.RegisterSetting("general", "max_items", "number")
	h.RegisterSetting("general", "max_items", "int")

	assert.Equal(t, []Setting{{Key: "site_title", Type: "text"}, {Key: "max_items", Type: "int"}}, h.Settings("general"))

	err := h.SaveSettings(ctx, "general", map[string]string{"site_title": " Hi ", "max_items": "5"},
		func(v, typ string) string { return strings.TrimSpace(v) + ":" + typ })
	require.NoError(t, err)

	v, ok, err := h.Options().GetOption(ctx, "site_title")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Hi:text", v)

	err = h.SaveSettings(ctx, "general", map[string]string{"rogue": "x"}, nil)
	assert.Error(t, err)
	_, ok, _ = h.Options().GetOption(ctx, "rogue")
	assert.False(t, ok)
}

func TestBulkActionsAndMail(t *testing.T) {
	h := newTestHost()
	var seen []int
	h.AddBulkAction("book", "archive", BulkAction{Label: "Archive", Handler: func(ids []int) { seen = ids }})

	require.NoError(t, h.RunBulkAction("book", "archive", []int{3, 4}))
	assert.Equal(t, []int{3, 4}, seen)
	assert.Error(t, h.RunBulkAction("book", "delete", nil))

	require.NoError(t, h.Mail("a@example.com", "s", "b", nil))
	assert.Error(t, h.Mail("", "s", "b", nil))
	assert.Len(t, h.Outbox(), 1)
}

func TestSnapshot(t *testing.T) {
	h := newTestHost()
	h.AddShortcode("b", func(map[string]string) string { return "" })
	h.AddShortcode("a", func(map[string]string) string { return "" })
	h.AddAjax("zeta", func(map[string]string) Response { return Response{} })
	h.AddAjax("alpha", func(map[string]string) Response { return Response{} })
	h.RegisterPostType("book", PostTypeArgs{Label: "Books", Public: true})
	h.AddBulkAction("book", "archive", BulkAction{Handler: func([]int) {}})
	h.AddWidget(Widget{ID: "w1"})
	h.DoAction("init")

	s := h.Snapshot()
	assert.Equal(t, []string{"a", "b"}, s.Shortcodes)
	assert.Equal(t, []string{"alpha", "zeta"}, s.AjaxActions)
	assert.Equal(t, "Books", s.PostTypes["book"].Label)
	assert.Equal(t, []string{"book/archive"}, s.BulkActions)
	assert.Equal(t, []string{"w1"}, s.Widgets)
	assert.Equal(t, 1, s.Hooks["init"])
}

func TestServeHTTP(t *testing.T) {
	h := newTestHost()
	h.AddAjax("echo", func(req map[string]string) Response {
		return Response{Success: true, Data: req["msg"]}
	})
	h.RegisterRoute("atom/v1", "/hello", func(params map[string]string) (any, int) {
		return map[string]string{"name": params["name"]}, http.StatusOK
	})
	srv := httptest.NewServer(h)
	defer srv.Close()

	t.Run("ajax form body", func(t *testing.T) {
		resp, err := http.PostForm(srv.URL+"/admin-ajax?action=echo", url.Values{"msg": {"hi"}})
		require.NoError(t, err)
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"success":true,"data":"hi"}`, string(body))
	})

	t.Run("ajax unknown action", func(t *testing.T) {
		resp, err := http.PostForm(srv.URL+"/admin-ajax?action=nope", nil)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("rest json body", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/wp-json/atom/v1/hello", "application/json", strings.NewReader(`{"name":"ann"}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"name":"ann"}`, string(body))
	})

	t.Run("rest wrong method", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/wp-json/atom/v1/hello")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})

	t.Run("json numbers keep their text", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/wp-json/atom/v1/hello", "application/json", strings.NewReader(`{"name":1000000}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"name":"1000000"}`, string(body))
	})

	t.Run("oversized body", func(t *testing.T) {
		for _, tc := range []struct{ path, contentType, body string }{
			{"/wp-json/atom/v1/hello", "application/json", `{"name":"` + strings.Repeat("a", MaxBodyBytes) + `"}`},
			{"/admin-ajax?action=echo", "application/x-www-form-urlencoded", "msg=" + strings.Repeat("a", MaxBodyBytes)},
		} {
			req := httptest.NewRequest(http.MethodPost, tc.path, strings.NewReader(tc.body))
			req.Header.Set("Content-Type", tc.contentType)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, tc.path)
		}
	})

	t.Run("bad json", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/wp-json/atom/v1/hello", "application/json", strings.NewReader(`{`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
