package service

import (
	"context"
	"errors"
	"time"

	"opengalaxy/apperr"
	"opengalaxy/badge"
	"opengalaxy/logger"
	"opengalaxy/model"
	"opengalaxy/render"
	"opengalaxy/repository"

	"github.com/google/uuid"
	"go.uber.org/zap/zapcore"
)

const issuedDateLayout = "January 02, 2006"

type CertificateService struct {
	certs   repository.CertificateRepository
	users   repository.UserRepository
	pdf     render.PDFRenderer
	baseURL string
	loc     *time.Location
	now     func() time.Time
	logger  *logger.Logger
}

func NewCertificateService(certs repository.CertificateRepository, users repository.UserRepository, pdf render.PDFRenderer, baseURL string, loc *time.Location, log *logger.Logger) *CertificateService {
	if loc == nil {
		loc = time.UTC
	}
	return &CertificateService{
		certs:   certs,
		users:   users,
		pdf:     pdf,
		baseURL: baseURL,
		loc:     loc,
		now:     time.Now,
		logger:  log,
	}
}

// Issue returns the user's active certificate, creating it when the user is
// eligible. Issuing again returns the existing record unchanged with created
// set to false.
func (s *CertificateService) Issue(ctx context.Context, githubID string) (cert *model.Certificate, created bool, err error) {
	traceID := uuid.New().String()
	s.logger.Log(zapcore.InfoLevel, traceID, "Starting IssueCertificate", map[string]any{
		"method":   "IssueCertificate",
		"githubId": githubID,
	}, "SERVICE", nil)

	user, err := s.users.FindByGithubID(ctx, githubID)
	if err != nil {
		return nil, false, logFailure(s.logger, traceID, "IssueCertificate", "Failed to load user", map[string]any{"githubId": githubID}, err)
	}
	userID := user.ID.Hex()

	existing, err := s.certs.FindActiveByUserID(ctx, userID)
	if err == nil {
		s.logger.Log(zapcore.InfoLevel, traceID, "Active certificate already issued", map[string]any{
			"method":        "IssueCertificate",
			"certificateId": existing.ID,
		}, "SERVICE", nil)
		return existing, false, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, false, logFailure(s.logger, traceID, "IssueCertificate", "Failed to look up active certificate", map[string]any{"userId": userID}, err)
	}

	if err := badge.CheckEligibility(user.Badges); err != nil {
		return nil, false, logFailure(s.logger, traceID, "IssueCertificate", "User not eligible for certificate", map[string]any{
			"userId": userID,
			"badges": len(user.Badges),
		}, err)
	}

	now := s.now()
	id := uuid.New().String()
	cert = &model.Certificate{
		ID:               id,
		UserID:           userID,
		UserName:         user.FullName,
		CourseTitle:      badge.CourseTitle(user.Badges),
		PrimarySkill:     badge.PrimarySkill(user.Badges),
		AllSkills:        append([]string{}, user.Badges...),
		VerificationURL:  s.baseURL + "/api/certificates/view/" + id,
		GithubProfileURL: "https://github.com/" + user.Username,
		GeneratedAt:      now,
		IssuedDate:       now.In(s.loc).Format(issuedDateLayout),
		IsActive:         true,
	}
	if cert.UserName == "" {
		cert.UserName = user.Username
	}
	if err := s.certs.Create(ctx, cert); err != nil {
		return nil, false, logFailure(s.logger, traceID, "IssueCertificate", "Failed to store certificate", map[string]any{"userId": userID}, err)
	}

	s.logger.Log(zapcore.InfoLevel, traceID, "Certificate issued", map[string]any{
		"method":        "IssueCertificate",
		"certificateId": cert.ID,
		"userId":        userID,
	}, "SERVICE", nil)
	return cert, true, nil
}

func (s *CertificateService) ListMine(ctx context.Context, userID string) ([]model.Certificate, error) {
	certs, err := s.certs.FindByUserID(ctx, userID)
	if err != nil {
		return nil, logFailure(s.logger, uuid.New().String(), "ListMyCertificates", "Failed to list certificates", map[string]any{"userId": userID}, err)
	}
	return certs, nil
}

func (s *CertificateService) Get(ctx context.Context, id string) (*model.Certificate, error) {
	cert, err := s.certs.FindByID(ctx, id)
	if err != nil {
		return nil, logFailure(s.logger, uuid.New().String(), "GetCertificate", "Failed to load certificate", map[string]any{"certificateId": id}, err)
	}
	return cert, nil
}

// Verify never fails on an unknown id; it reports the certificate as invalid.
func (s *CertificateService) Verify(ctx context.Context, id string) (*model.CertificateVerification, error) {
	cert, err := s.certs.FindByID(ctx, id)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return &model.CertificateVerification{Valid: false, CertificateID: id, Message: "certificate not found"}, nil
	case err != nil:
		return nil, logFailure(s.logger, uuid.New().String(), "VerifyCertificate", "Failed to load certificate", map[string]any{"certificateId": id}, err)
	case !cert.IsActive:
		return &model.CertificateVerification{Valid: false, CertificateID: id, Message: "certificate is no longer active", Certificate: cert}, nil
	}
	return &model.CertificateVerification{Valid: true, CertificateID: id, Message: "certificate is valid", Certificate: cert}, nil
}

func (s *CertificateService) RenderHTML(ctx context.Context, id string) ([]byte, error) {
	cert, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	html, err := render.HTML(*cert)
	if err != nil {
		return nil, logFailure(s.logger, uuid.New().String(), "RenderCertificateHTML", "Failed to render certificate", map[string]any{"certificateId": id},
			apperr.Internal(err, "failed to render certificate"))
	}
	return html, nil
}

func (s *CertificateService) RenderPDF(ctx context.Context, id string) ([]byte, error) {
	html, err := s.RenderHTML(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.pdf == nil {
		return nil, apperr.Internal(nil, "PDF rendering is not configured")
	}
	pdf, err := s.pdf.PDF(ctx, html)
	if err != nil {
		return nil, logFailure(s.logger, uuid.New().String(), "RenderCertificatePDF", "Failed to print certificate", map[string]any{"certificateId": id},
			apperr.Internal(err, "failed to generate certificate PDF"))
	}
	return pdf, nil
}

func (s *CertificateService) QRCode(ctx context.Context, id string) ([]byte, error) {
	cert, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	png, err := render.QRCode(cert.VerificationURL, 256)
	if err != nil {
		return nil, logFailure(s.logger, uuid.New().String(), "CertificateQRCode", "Failed to encode QR code", map[string]any{"certificateId": id},
			apperr.Internal(err, "failed to generate QR code"))
	}
	return png, nil
}

func (s *CertificateService) Preview(ctx context.Context, id string) ([]byte, error) {
	cert, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	png, err := render.Preview(*cert)
	if err != nil {
		return nil, logFailure(s.logger, uuid.New().String(), "CertificatePreview", "Failed to draw preview", map[string]any{"certificateId": id},
			apperr.Internal(err, "failed to generate certificate preview"))
	}
	return png, nil
}
