package cookie

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func cookiesByName(rr *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := make(map[string]*http.Cookie)
	for _, c := range rr.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}

func TestJar_SetTokens(t *testing.T) {
	testCases := []struct {
		name     string
		secure   bool
		sameSite http.SameSite
	}{
		{"development", false, http.SameSiteLaxMode},
		{"production", true, http.SameSiteNoneMode},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			Jar{Secure: tc.secure}.SetTokens(rr, "acc", "ref")
			got := cookiesByName(rr)

			access, refresh := got[AccessName], got[RefreshName]
			if access == nil || refresh == nil {
				t.Fatalf("cookies = %v", got)
			}
			if access.Value != "acc" || access.MaxAge != 3600 {
				t.Errorf("access = %+v", access)
			}
			if refresh.Value != "ref" || refresh.MaxAge != 604800 {
				t.Errorf("refresh = %+v", refresh)
			}
			for _, c := range []*http.Cookie{access, refresh} {
				if !c.HttpOnly || c.Path != "/" || c.Secure != tc.secure || c.SameSite != tc.sameSite {
					t.Errorf("%s attributes = %+v", c.Name, c)
				}
			}
		})
	}
}

func TestJar_Clear(t *testing.T) {
	rr := httptest.NewRecorder()
	Jar{}.Clear(rr)
	got := cookiesByName(rr)
	for _, name := range []string{AccessName, RefreshName} {
		c := got[name]
		if c == nil {
			t.Fatalf("%s not cleared", name)
		}
		if c.Value != "" || c.MaxAge >= 0 {
			t.Errorf("%s = %+v, want expired", name, c)
		}
	}
}

func TestRead(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := Read(req, AccessName); got != "" {
		t.Errorf("Read = %q, want empty", got)
	}
	req.AddCookie(&http.Cookie{Name: AccessName, Value: "tok"})
	if got := Read(req, AccessName); got != "tok" {
		t.Errorf("Read = %q, want %q", got, "tok")
	}
}
