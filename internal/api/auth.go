package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"dchat/client/internal/models"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a token. The caller decides where the
// token lives (session.Store); this client stores nothing.
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginData, error) {
	var data models.LoginData
	err := c.postJSON(ctx, "/Auth/Login", loginRequest{Email: email, Password: password}, false, &data)
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// Register creates an account. imagePath is optional; when set the file is
// attached as the profile image.
func (c *Client) Register(ctx context.Context, userName, email, password, imagePath string) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("userName", userName)
	_ = w.WriteField("email", email)
	_ = w.WriteField("password", password)
	if imagePath != "" {
		if err := attachFile(w, "userImage", imagePath); err != nil {
			return fmt.Errorf("%w: %v", ErrRequestFailed, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	var ok bool
	if err := c.postMultipartUnauthed(ctx, "/Auth/Register", w.FormDataContentType(), &buf, &ok); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: registration rejected", ErrRequestFailed)
	}
	return nil
}

// Logout invalidates the credential server side. The local store is cleared
// by the caller regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	return c.postJSON(ctx, "/Auth/Logout", struct{}{}, true, nil)
}

func (c *Client) postMultipartUnauthed(ctx context.Context, path, contentType string, body io.Reader, out any) error {
	req, err := newPostRequest(ctx, c.baseURL+path, contentType, body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	return c.do(req, false, out)
}

func attachFile(w *multipart.Writer, field, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	part, err := w.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = io.Copy(part, f)
	return err
}
