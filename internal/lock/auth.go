package lock

import (
	"fmt"

	"github.com/msteinert/pam"
)

// Credentials is the embedder-supplied unlock attempt.
type Credentials struct {
	Username string // empty to derive via LastLoggedInUser
	Password string
}

// usernamePasswordConversation answers every regular ("echo on") PAM
// prompt with the username and every masked ("echo off") prompt with the
// password. It assumes the PAM module only ever asks for those two
// things and never re-prompts.
type usernamePasswordConversation struct {
	username string
	password string
}

func (c usernamePasswordConversation) RespondPAM(style pam.Style, _ string) (string, error) {
	switch style {
	case pam.PromptEchoOn:
		return c.username, nil
	case pam.PromptEchoOff:
		return c.password, nil
	case pam.ErrorMsg, pam.TextInfo:
		// Ignored: the runtime has no UI surface for PAM info/error text.
		return "", nil
	default:
		return "", fmt.Errorf("lock: unsupported PAM prompt style %v", style)
	}
}

// authenticate runs a PAM transaction for service "login":
// authenticate, then account-management. Any failure is wrapped in
// ErrAuthentication and the session stays locked; retries are left to
// the embedder. A package variable so tests can substitute a fake PAM
// backend without a real PAM stack.
var authenticate = authenticateViaPAM

func authenticateViaPAM(creds Credentials) error {
	convo := usernamePasswordConversation{username: creds.Username, password: creds.Password}
	txn, err := pam.StartFunc("login", creds.Username, convo.RespondPAM)
	if err != nil {
		return fmt.Errorf("%w: start transaction: %v", ErrAuthentication, err)
	}
	if err := txn.Authenticate(0); err != nil {
		return fmt.Errorf("%w: authenticate: %v", ErrAuthentication, err)
	}
	if err := txn.AcctMgmt(0); err != nil {
		return fmt.Errorf("%w: account management: %v", ErrAuthentication, err)
	}
	return nil
}
