package handlers_test

import (
	"net/http"
	"testing"

	"aurelia/internal/repos"
)

func TestAdminGuard(t *testing.T) {
	app, db := newTestApp(t)
	users := repos.NewUserRepo(db)

	// Anonymous visitors are sent to login, not told the page exists.
	resp, err := app.Test(getReq("/admin/orders", ""))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/login" {
		t.Fatalf("anonymous: want redirect to /login, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}

	// A logged-in customer is refused.
	if err := users.BindSession("sid-customer", "u-maya"); err != nil {
		t.Fatal(err)
	}
	resp, err = app.Test(getReq("/admin/orders", "sid-customer"))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("customer: want 403, got %d", resp.StatusCode)
	}

	// The seeded admin gets through.
	if err := users.BindSession("sid-admin", "u-admin"); err != nil {
		t.Fatal(err)
	}
	resp, err = app.Test(getReq("/admin/orders", "sid-admin"))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin: want 200, got %d", resp.StatusCode)
	}
}

func TestSessionsSurviveLogout(t *testing.T) {
	app, db := newTestApp(t)
	users := repos.NewUserRepo(db)

	if err := users.BindSession("sid-out", "u-admin"); err != nil {
		t.Fatal(err)
	}
	if err := users.UnbindSession("sid-out"); err != nil {
		t.Fatal(err)
	}
	resp, err := app.Test(getReq("/admin/orders", "sid-out"))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("unbound session must lose admin access, got %d", resp.StatusCode)
	}
}
