package portfolio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"folio/cmd/internal/auth/session"
)

const (
	resumeField       = "file"
	maxPortfolioIDLen = 128
	// multipart framing allowance on top of the file limit.
	multipartOverhead = 1 << 20
)

// SessionResolver is satisfied by *session.Resolver.
type SessionResolver interface {
	ResolveRequest(r *http.Request, mode session.Mode) session.Outcome
}

type Handler struct {
	log       *slog.Logger
	cfg       Config
	sessions  SessionResolver
	objects   ObjectStore
	parser    ResumeParser
	generator Generator
	now       func() time.Time
}

type Option func(*Handler)

func WithParser(p ResumeParser) Option {
	return func(h *Handler) {
		if p != nil {
			h.parser = p
		}
	}
}

func WithGenerator(g Generator) Option {
	return func(h *Handler) {
		if g != nil {
			h.generator = g
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

func NewHandler(log *slog.Logger, cfg Config, sessions SessionResolver, objects ObjectStore, opts ...Option) (*Handler, error) {
	if sessions == nil || objects == nil {
		return nil, errors.New("portfolio: missing dependency")
	}
	if log == nil {
		log = slog.Default()
	}
	if cfg.MaxResumeBytes <= 0 {
		cfg.MaxResumeBytes = DefaultMaxResumeBytes
	}
	if cfg.MaxJSONBytes <= 0 {
		cfg.MaxJSONBytes = 64 << 10
	}

	h := &Handler{
		log:       log,
		cfg:       cfg,
		sessions:  sessions,
		objects:   objects,
		parser:    NoopParser{},
		generator: QueuedGenerator{},
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h, nil
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/api/upload/resume", h.handleUploadResume)
	r.Post("/api/portfolio/generate", h.handleGenerate)
}

// requireUser writes 401 and returns false unless CrossCheck authenticates.
func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) (session.Identity, bool) {
	out := h.sessions.ResolveRequest(r, session.CrossCheck)
	id, ok := out.Identity()
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
		return session.Identity{}, false
	}
	return id, true
}

type uploadResponse struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data"`
}

func (h *Handler) handleUploadResume(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	userID := id.UserID()

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxResumeBytes+multipartOverhead)
	mr, err := r.MultipartReader()
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "multipart/form-data body required")
		return
	}

	filename, data, err := h.readResumePart(mr)
	switch {
	case err == nil:
	case errors.Is(err, errFileTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, codeFileTooLarge, fmt.Sprintf("file exceeds %d bytes", h.cfg.MaxResumeBytes))
		return
	case errors.Is(err, errMissingFile):
		writeError(w, http.StatusBadRequest, codeMissingFile, "form field \"file\" is required")
		return
	default:
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(w, http.StatusRequestEntityTooLarge, codeFileTooLarge, fmt.Sprintf("file exceeds %d bytes", h.cfg.MaxResumeBytes))
			return
		}
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "malformed multipart body")
		return
	}

	contentType, ext, ok := detectResume(filename, data)
	if !ok {
		writeError(w, http.StatusUnsupportedMediaType, codeUnsupportedType, "only pdf and docx resumes are accepted")
		return
	}

	ctx := r.Context()
	key := h.cfg.KeyPrefix + userID + "/" + uuid.NewString() + ext
	if err := h.objects.Put(ctx, Object{
		Key:         key,
		ContentType: contentType,
		Size:        int64(len(data)),
		Body:        bytes.NewReader(data),
		Metadata: map[string]string{
			"original-filename": filename,
			"user-id":           userID,
			"upload-time":       h.now().Format(time.RFC3339),
		},
	}); err != nil {
		h.log.Error("portfolio.resume.store.fail", "err", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, codeServerError, "internal error")
		return
	}

	parsed, err := h.parser.Parse(ctx, ResumeFile{
		UserID:      userID,
		Key:         key,
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
	})
	if err != nil {
		h.log.Warn("portfolio.resume.parse.fail", "err", err, "user_id", userID, "key", key)
		writeError(w, http.StatusUnprocessableEntity, codeParseFailed, "resume could not be parsed")
		return
	}
	if parsed == nil {
		parsed = map[string]any{}
	}

	h.log.Info("portfolio.resume.upload.ok", "user_id", userID, "key", key, "bytes", len(data))
	writeJSON(w, http.StatusOK, uploadResponse{Success: true, Data: parsed})
}

var (
	errMissingFile  = errors.New("missing file part")
	errFileTooLarge = errors.New("file too large")
)

// readResumePart returns the first part named "file", buffered up to the
// configured limit. Other parts are skipped.
func (h *Handler) readResumePart(mr *multipart.Reader) (string, []byte, error) {
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return "", nil, errMissingFile
		}
		if err != nil {
			return "", nil, err
		}
		if part.FormName() != resumeField || part.FileName() == "" {
			_ = part.Close()
			continue
		}

		data, err := io.ReadAll(io.LimitReader(part, h.cfg.MaxResumeBytes+1))
		_ = part.Close()
		if err != nil {
			return "", nil, err
		}
		if int64(len(data)) > h.cfg.MaxResumeBytes {
			return "", nil, errFileTooLarge
		}
		if len(data) == 0 {
			return "", nil, errMissingFile
		}
		return cleanFilename(part.FileName()), data, nil
	}
}

type generateRequest struct {
	PortfolioID string         `json:"portfolio_id"`
	Options     map[string]any `json:"options"`
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var req generateRequest
	if err := decodeJSON(w, r, h.cfg.MaxJSONBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidJSON, "invalid request body")
		return
	}
	req.PortfolioID = strings.TrimSpace(req.PortfolioID)
	if req.PortfolioID == "" || len(req.PortfolioID) > maxPortfolioIDLen {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "portfolio_id is required")
		return
	}
	if req.Options == nil {
		req.Options = map[string]any{}
	}

	res, err := h.generator.Generate(r.Context(), GenerateRequest{
		UserID:      id.UserID(),
		PortfolioID: req.PortfolioID,
		Options:     req.Options,
	})
	if err != nil {
		h.log.Error("portfolio.generate.fail", "err", err, "user_id", id.UserID(), "portfolio_id", req.PortfolioID)
		writeError(w, http.StatusBadGateway, codeServerError, "portfolio generation failed")
		return
	}

	h.log.Info("portfolio.generate.ok", "user_id", id.UserID(), "portfolio_id", req.PortfolioID, "job_id", res.JobID)
	writeJSON(w, http.StatusAccepted, res)
}
