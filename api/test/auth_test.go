package test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/vmihailov/learnhub/core/token"
	"github.com/vmihailov/learnhub/core/user"
)

type authTest struct {
	*TestEnv
}

func (at *authTest) postJSON(t *testing.T, path string, in any) *http.Response {
	body, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}

	w, err := at.Client().Post(at.URL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	return w
}

// recoveryMail polls the recorder until the background mailer has
// delivered the token.
func (at *authTest) recoveryMail(t *testing.T, email string) string {
	for i := 0; i < 50; i++ {
		if tok, ok := at.Mails.Recoveries[email]; ok {
			return tok
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("no recovery mail arrived for %s", email)
	return ""
}

func TestSignup(t *testing.T) {
	env, err := NewTestEnv(t, "signup_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	at := &authTest{TestEnv: env}

	us := user.UserSignup{
		Name:            "New Student",
		Email:           "new@example.com",
		Password:        testPass,
		PasswordConfirm: testPass,
	}

	w := at.postJSON(t, "/auth/signup", us)
	defer w.Body.Close()
	if w.StatusCode != http.StatusCreated {
		t.Fatalf("can't sign up: status code %s", w.Status)
	}

	var usr user.User
	if err := json.NewDecoder(w.Body).Decode(&usr); err != nil {
		t.Fatalf("cannot unmarshal created user: %v", err)
	}
	if !usr.Active {
		t.Fatal("without mandatory activation a fresh account must be active")
	}

	// The signup opened a session right away.
	cw, err := at.Client().Get(at.URL + "/users/current")
	if err != nil {
		t.Fatal(err)
	}
	cw.Body.Close()
	if cw.StatusCode != http.StatusOK {
		t.Fatalf("expected to be logged in after signup, got status code %s", cw.Status)
	}

	if err := at.Logout(); err != nil {
		t.Fatal(err)
	}

	// The same email cannot sign up twice.
	dw := at.postJSON(t, "/auth/signup", us)
	dw.Body.Close()
	if dw.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate signup, got status code %s", dw.Status)
	}

	// Wrong credentials stay out.
	lw := at.postJSON(t, "/auth/login", map[string]string{
		"email":    us.Email,
		"password": "not-the-password",
	})
	lw.Body.Close()
	if lw.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 on a wrong password, got status code %s", lw.Status)
	}
}

func TestPasswordRecovery(t *testing.T) {
	env, err := NewTestEnv(t, "recovery_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	at := &authTest{TestEnv: env}

	// Probing an unknown account looks exactly like a hit.
	w := at.postJSON(t, "/tokens", token.TokenNew{Email: "ghost@example.com", Scope: token.ScopeRecovery})
	w.Body.Close()
	if w.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204 for an unknown email, got status code %s", w.Status)
	}

	w = at.postJSON(t, "/tokens", token.TokenNew{Email: at.UserEmail, Scope: token.ScopeRecovery})
	w.Body.Close()
	if w.StatusCode != http.StatusNoContent {
		t.Fatalf("can't request a recovery token: status code %s", w.Status)
	}

	plain := at.recoveryMail(t, at.UserEmail)
	if _, ok := at.Mails.Recoveries["ghost@example.com"]; ok {
		t.Fatal("a mail was sent to an account that does not exist")
	}

	newPass := "freshpassword42"
	w = at.postJSON(t, "/tokens/recover", token.Recovery{
		Token:           plain,
		Password:        newPass,
		PasswordConfirm: newPass,
	})
	w.Body.Close()
	if w.StatusCode != http.StatusNoContent {
		t.Fatalf("can't recover the password: status code %s", w.Status)
	}

	// The old password is gone, the new one works.
	if err := at.Login(at.UserEmail, at.UserPass); err == nil {
		t.Fatal("the old password still opens a session")
	}
	if err := at.Login(at.UserEmail, newPass); err != nil {
		t.Fatal(err)
	}
	at.Logout()

	// A consumed token cannot be replayed.
	w = at.postJSON(t, "/tokens/recover", token.Recovery{
		Token:           plain,
		Password:        "yetanotherpass",
		PasswordConfirm: "yetanotherpass",
	})
	w.Body.Close()
	if w.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 on a consumed token, got status code %s", w.Status)
	}
}
