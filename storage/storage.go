// Package storage relays uploaded bytes to the external object host and
// hands back a public URL. The platform stores nothing but the reference.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"
)

const postUrl = "https://api.na.cx/upload"

func Upload(ctx context.Context, reader io.Reader, name string) (string, error) {
	if name == "" {
		name = uuid.NewString()
	}
	b := &bytes.Buffer{}
	mw := multipart.NewWriter(b)
	fw, err := mw.CreateFormFile("image", name)
	if err != nil {
		return "", err
	}
	if _, err = io.Copy(fw, reader); err != nil {
		return "", err
	}
	mw.Close()

	r, err := http.NewRequestWithContext(ctx, http.MethodPost, postUrl, b)
	if err != nil {
		return "", err
	}
	r.Header.Set("Content-Type", mw.FormDataContentType())
	var resp *http.Response
	if resp, err = http.DefaultClient.Do(r); err != nil {
		return "", err
	}
	defer resp.Body.Close()
	var body struct {
		Status int    `json:"status"`
		Url    string `json:"url"`
	}
	decoder := json.NewDecoder(resp.Body)
	err = decoder.Decode(&body)
	return body.Url, err
}
