package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/studynotion-backend/internal/platform/apierr"
	"github.com/yungbote/studynotion-backend/internal/platform/ctxutil"
	"github.com/yungbote/studynotion-backend/internal/platform/media"
)

// multipartMemory is how much of a multipart body is held in memory before
// parts spill to temp files.
const multipartMemory = 32 << 20

// requestForm is the flattened body of a request. Multipart, urlencoded and
// JSON bodies all end up here; JSON arrays and objects keep their JSON text.
type requestForm struct {
	values map[string]string
	files  map[string][]*multipart.FileHeader
}

func readForm(c *gin.Context) (*requestForm, error) {
	f := &requestForm{values: map[string]string{}, files: map[string][]*multipart.FileHeader{}}
	for k, v := range c.Request.URL.Query() {
		if len(v) > 0 {
			f.values[k] = v[0]
		}
	}
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return f, nil
	}
	ct := c.ContentType()
	switch {
	case ct == gin.MIMEMultipartPOSTForm:
		if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
			return nil, formError(err)
		}
		for k, v := range c.Request.MultipartForm.Value {
			if len(v) > 0 {
				f.values[k] = v[0]
			}
		}
		f.files = c.Request.MultipartForm.File
	case ct == gin.MIMEPOSTForm:
		if err := c.Request.ParseForm(); err != nil {
			return nil, formError(err)
		}
		for k, v := range c.Request.PostForm {
			if len(v) > 0 {
				f.values[k] = v[0]
			}
		}
	case ct == gin.MIMEJSON:
		var raw map[string]json.RawMessage
		if err := c.ShouldBindJSON(&raw); err != nil {
			return nil, formError(err)
		}
		for k, v := range raw {
			// null means absent, so a patch leaves the field alone.
			if string(v) == "null" {
				continue
			}
			var s string
			if err := json.Unmarshal(v, &s); err == nil {
				f.values[k] = s
				continue
			}
			f.values[k] = string(v)
		}
	}
	return f, nil
}

func formError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apierr.New(http.StatusRequestEntityTooLarge, "payload_too_large",
			fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit))
	}
	return apierr.Validation("invalid request body: %v", err)
}

func (f *requestForm) get(key string) string { return strings.TrimSpace(f.values[key]) }

// optional returns nil for absent keys so patches can leave fields alone.
func (f *requestForm) optional(key string) *string {
	v, ok := f.values[key]
	if !ok {
		return nil
	}
	v = strings.TrimSpace(v)
	return &v
}

func (f *requestForm) uuid(key string) (uuid.UUID, error) {
	raw := f.get(key)
	if raw == "" {
		return uuid.Nil, apierr.Validation("%s is required", key)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apierr.Validation("%s is not a valid id", key)
	}
	return id, nil
}

func (f *requestForm) price(key string) (*float64, error) {
	raw, ok := f.values[key]
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	p, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil, apierr.Validation("%s must be a number", key)
	}
	return &p, nil
}

// file opens the first upload under key. The returned close func is never nil.
func (f *requestForm) file(key string) (*media.Blob, func(), error) {
	headers := f.files[key]
	if len(headers) == 0 {
		return nil, func() {}, nil
	}
	fh := headers[0]
	rc, err := fh.Open()
	if err != nil {
		return nil, func() {}, apierr.Validation("cannot read upload %s: %v", key, err)
	}
	blob := &media.Blob{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Reader:      rc,
	}
	return blob, func() { _ = rc.Close() }, nil
}

func pathUUID(c *gin.Context, key string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(key)))
	if err != nil {
		return uuid.Nil, apierr.Validation("%s is not a valid id", key)
	}
	return id, nil
}

func actorOf(c *gin.Context) ctxutil.Actor {
	actor, _ := ctxutil.GetActor(c.Request.Context())
	return actor
}

// baseURL prefers the configured public origin and otherwise rebuilds it
// from the request, honouring a TLS-terminating proxy.
func baseURL(c *gin.Context, configured string) string {
	if b := strings.TrimRight(strings.TrimSpace(configured), "/"); b != "" {
		return b
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if p := strings.TrimSpace(c.GetHeader("X-Forwarded-Proto")); p != "" {
		scheme = strings.ToLower(strings.Split(p, ",")[0])
	}
	host := c.Request.Host
	if h := strings.TrimSpace(c.GetHeader("X-Forwarded-Host")); h != "" {
		host = strings.Split(h, ",")[0]
	}
	return scheme + "://" + strings.TrimSpace(host)
}
