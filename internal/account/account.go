package account

import (
	"context"

	"github.com/n0madic/go-feedclient/internal/apiclient"
)

// Account is the public view of an account.
type Account struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type findByIDRequest struct {
	ID uint `json:"id"`
}

type findByUsernameRequest struct {
	Username string `json:"username"`
}

type renameRequest struct {
	NewUsername string `json:"new_username"`
}

type changePasswordRequest struct {
	Username    string `json:"username"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Service exposes the /account endpoints.
type Service struct {
	client *apiclient.Client
}

// NewService creates an account service on top of c.
func NewService(c *apiclient.Client) *Service {
	return &Service{client: c}
}

// Register creates an account and returns the backend's confirmation message.
func (s *Service) Register(ctx context.Context, username, password string) (string, error) {
	resp, err := apiclient.PostJSON[messageResponse](ctx, s.client, "/account/register",
		credentialsRequest{Username: username, Password: password})
	return resp.Message, err
}

// Login exchanges username and password for a session token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	resp, err := apiclient.PostJSON[loginResponse](ctx, s.client, "/account/login",
		credentialsRequest{Username: username, Password: password})
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", ErrNoToken
	}
	return resp.Token, nil
}

// Logout invalidates the current session token on the backend.
func (s *Service) Logout(ctx context.Context) error {
	_, err := apiclient.PostJSON[messageResponse](ctx, s.client, "/account/logout", struct{}{}, apiclient.WithAuth())
	return err
}

// FindByID looks up an account.
func (s *Service) FindByID(ctx context.Context, id uint) (Account, error) {
	return apiclient.PostJSON[Account](ctx, s.client, "/account/findByID", findByIDRequest{ID: id})
}

// FindByUsername looks up an account by its login name.
func (s *Service) FindByUsername(ctx context.Context, username string) (Account, error) {
	return apiclient.PostJSON[Account](ctx, s.client, "/account/findByUsername", findByUsernameRequest{Username: username})
}

// Rename changes the signed-in account's username. Tokens issued before the
// rename may still carry the old name.
func (s *Service) Rename(ctx context.Context, newUsername string) (string, error) {
	resp, err := apiclient.PostJSON[messageResponse](ctx, s.client, "/account/rename",
		renameRequest{NewUsername: newUsername}, apiclient.WithAuth())
	return resp.Message, err
}

// ChangePassword replaces the password of username. The old password
// authenticates the call, so no session token is sent.
func (s *Service) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) (string, error) {
	resp, err := apiclient.PostJSON[messageResponse](ctx, s.client, "/account/changePassword",
		changePasswordRequest{Username: username, OldPassword: oldPassword, NewPassword: newPassword})
	return resp.Message, err
}
