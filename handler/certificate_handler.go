package handler

import (
	"fmt"
	"net/http"
	"strings"

	"opengalaxy/apperr"
	"opengalaxy/model"
	"opengalaxy/service"

	"github.com/go-chi/chi/v5"
)

type CertificateHandler struct {
	certs *service.CertificateService
	users *service.UserService
}

func NewCertificateHandler(certs *service.CertificateService, users *service.UserService) *CertificateHandler {
	return &CertificateHandler{certs: certs, users: users}
}

func (h *CertificateHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(Authenticator)
		r.Post("/", h.Create)
		r.Post("/create", h.Create)
		r.Get("/mine", h.ListMine)
	})

	r.Get("/verify/{id}", h.Verify)
	r.Get("/view/{id}", h.View)
	r.Get("/download/{id}", h.Download)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/qr.png", h.QRCode)
	r.Get("/{id}/preview.png", h.Preview)
}

type issueResponse struct {
	CertificateID  string             `json:"certificateId"`
	Certificate    *model.Certificate `json:"certificate"`
	GithubUsername string             `json:"githubUsername"`
	FullName       string             `json:"fullName"`
	Message        string             `json:"message"`
}

func (h *CertificateHandler) Create(w http.ResponseWriter, r *http.Request) {
	githubID, ok := GetGithubIDFromContext(r.Context())
	if !ok {
		RespondWithError(w, apperr.Unauthorized("Authorization token required"))
		return
	}
	cert, created, err := h.certs.Issue(r.Context(), githubID)
	if err != nil {
		RespondWithError(w, err)
		return
	}
	user, err := h.users.GetByID(r.Context(), cert.UserID)
	if err != nil {
		RespondWithError(w, err)
		return
	}
	status, message := http.StatusOK, "Certificate retrieved successfully."
	if created {
		status, message = http.StatusCreated, "Certificate issued successfully."
	}
	RespondWithJSON(w, status, issueResponse{
		CertificateID:  cert.ID,
		Certificate:    cert,
		GithubUsername: user.Username,
		FullName:       user.FullName,
		Message:        message,
	})
}

func (h *CertificateHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	certs, err := h.certs.ListMine(r.Context(), userID(r))
	if err != nil {
		RespondWithError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, certs)
}

func (h *CertificateHandler) Get(w http.ResponseWriter, r *http.Request) {
	cert, err := h.certs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		RespondWithError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, cert)
}

func (h *CertificateHandler) Verify(w http.ResponseWriter, r *http.Request) {
	result, err := h.certs.Verify(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		RespondWithError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, result)
}

// View serves the printable page, or the record itself to JSON clients.
func (h *CertificateHandler) View(w http.ResponseWriter, r *http.Request) {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		h.Get(w, r)
		return
	}
	page, err := h.certs.RenderHTML(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		RespondWithError(w, err)
		return
	}
	respondBytes(w, "text/html; charset=utf-8", page)
}

func (h *CertificateHandler) Download(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pdf, err := h.certs.RenderPDF(r.Context(), id)
	if err != nil {
		RespondWithError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="certificate-%s.pdf"`, id))
	respondBytes(w, "application/pdf", pdf)
}

func (h *CertificateHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	png, err := h.certs.QRCode(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		RespondWithError(w, err)
		return
	}
	respondBytes(w, "image/png", png)
}

func (h *CertificateHandler) Preview(w http.ResponseWriter, r *http.Request) {
	png, err := h.certs.Preview(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		RespondWithError(w, err)
		return
	}
	respondBytes(w, "image/png", png)
}
