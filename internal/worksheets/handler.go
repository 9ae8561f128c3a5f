package worksheets

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/JaimeStill/worksheet-lab/pkg/handlers"
	"github.com/JaimeStill/worksheet-lab/pkg/routes"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// formOverhead is allowed on top of the file limit for the other multipart fields.
const formOverhead = 1 << 20

// Guard wraps handlers that require an authorized caller.
type Guard func(http.HandlerFunc) http.HandlerFunc

// MutationResult is the response body of upload and edit.
type MutationResult struct {
	Success   bool       `json:"success"`
	Worksheet *Worksheet `json:"worksheet,omitempty"`
}

// Handler provides HTTP endpoints for worksheet operations.
type Handler struct {
	sys           System
	guard         Guard
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a worksheet handler. A nil guard leaves mutating routes open.
func NewHandler(sys System, guard Guard, logger *slog.Logger, maxUploadSize int64) *Handler {
	if guard == nil {
		guard = func(next http.HandlerFunc) http.HandlerFunc { return next }
	}
	return &Handler{
		sys:           sys,
		guard:         guard,
		logger:        logger.With("handler", "worksheets"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the worksheet endpoint route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/worksheets",
		Tags:        []string{"Worksheets"},
		Description: "Worksheet upload, listing, download, and management",
		Routes:      h.routes(true),
		Schemas:     Spec.Schemas(),
	}
}

// AdminRoutes mounts the same endpoints under /admin/pdfs for older admin
// clients. They are left out of the OpenAPI document.
func (h *Handler) AdminRoutes() routes.Group {
	return routes.Group{
		Prefix: "/admin/pdfs",
		Routes: h.routes(false),
	}
}

func (h *Handler) routes(documented bool) []routes.Route {
	list := []routes.Route{
		{Method: "POST", Pattern: "/upload", Handler: h.guard(h.Upload), OpenAPI: Spec.Upload},
		{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: Spec.List},
		{Method: "GET", Pattern: "/popular", Handler: h.Popular, OpenAPI: Spec.Popular},
		{Method: "GET", Pattern: "/recent", Handler: h.Recent, OpenAPI: Spec.Recent},
		{Method: "GET", Pattern: "/download/{id}", Handler: h.Download, OpenAPI: Spec.Download},
		{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: Spec.Find},
		{Method: "PUT", Pattern: "/{id}", Handler: h.guard(h.Edit), OpenAPI: Spec.Edit},
		{Method: "DELETE", Pattern: "/{id}", Handler: h.guard(h.Delete), OpenAPI: Spec.Delete},
	}
	if !documented {
		for i := range list {
			list[i].OpenAPI = nil
		}
	}
	return list
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+formOverhead)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadSize {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	contentType := detectContentType(header.Header.Get("Content-Type"), data)

	var pageCount *int
	if contentType == "application/pdf" {
		pc, err := extractPDFPageCount(data)
		if err != nil {
			h.logger.Warn("failed to extract pdf page count", "error", err)
		} else {
			pageCount = pc
		}
	}

	cmd := UploadCommand{
		Data:         data,
		ContentType:  contentType,
		OriginalName: header.Filename,
		PageCount:    pageCount,
		Title:        r.FormValue("title"),
		Description:  r.FormValue("description"),
		Category:     r.FormValue("category"),
		Subject:      r.FormValue("subject"),
		Tags:         r.FormValue("tags"),
		Grade:        r.FormValue("grade"),
		AgeGroup:     r.FormValue("ageGroup"),
	}

	ws, err := h.sys.Upload(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, MutationResult{Success: true, Worksheet: ws})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.sys.List(r.Context(), FiltersFromQuery(r.URL.Query()))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, items)
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	ws, err := h.sys.Find(r.Context(), r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, ws)
}

func (h *Handler) Popular(w http.ResponseWriter, r *http.Request) {
	items, err := h.sys.Popular(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, items)
}

func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	items, err := h.sys.Recent(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, items)
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	dl, err := h.sys.Download(r.Context(), r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer dl.Body.Close()

	w.Header().Set("Content-Type", dl.ContentType)
	w.Header().Set("Content-Disposition", contentDisposition(dl.FileName))
	if dl.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(dl.Size, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, dl.Body); err != nil {
		h.logger.Warn("download interrupted", "id", r.PathValue("id"), "error", err)
	}
}

func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	var cmd EditCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	ws, err := h.sys.Edit(r.Context(), r.PathValue("id"), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, MutationResult{Success: true, Worksheet: ws})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sys.Delete(r.Context(), r.PathValue("id")); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, MutationResult{Success: true})
}

func detectContentType(header string, data []byte) string {
	if header != "" && header != "application/octet-stream" {
		return header
	}
	return http.DetectContentType(data)
}

// extractPDFPageCount recovers from parser panics on malformed input.
func extractPDFPageCount(data []byte) (n *int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = nil, fmt.Errorf("pdf parse panic: %v", r)
		}
	}()

	count, err := api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return nil, err
	}
	return &count, nil
}

// contentDisposition builds an attachment header with an ASCII fallback name
// and the RFC 5987 encoded original.
func contentDisposition(name string) string {
	fallback := strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			return '_'
		}
		return r
	}, name)

	v := `attachment; filename="` + fallback + `"`
	if fallback != name {
		v += "; filename*=UTF-8''" + extValue(name)
	}
	return v
}

// extValue percent-encodes every byte of s outside the RFC 5987 attr-char set.
func extValue(s string) string {
	const hex = "0123456789ABCDEF"

	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAttrChar(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isAttrChar(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("!#$&+-.^_`|~", c) >= 0
}
