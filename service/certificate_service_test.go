package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"opengalaxy/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssue_ZeroPointsIsForbidden(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	newbie := env.user(t, "100", "newbie", 0)

	_, _, err := env.svc.Certificates.Issue(ctx, "100")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Contains(t, err.Error(), "requires at least 1 badge(s), user holds 0")

	list, err := env.svc.Certificates.ListMine(ctx, newbie.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestIssue_UnknownUser(t *testing.T) {
	env := newTestEnv(t)
	_, _, err := env.svc.Certificates.Issue(context.Background(), "404")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestIssue_SnapshotAndIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "7", "ada", 5, "Code Spark", "Stellar Coder", "Cosmic Contributor")
	env.svc.Certificates.now = func() time.Time { return time.Date(2026, 10, 16, 8, 30, 0, 0, time.UTC) }

	cert, created, err := env.svc.Certificates.Issue(ctx, "7")
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, cert.IsActive)
	assert.Equal(t, u.ID.Hex(), cert.UserID)
	assert.Equal(t, "ada Full", cert.UserName)
	assert.Equal(t, "Intermediate Problem Solving", cert.CourseTitle)
	assert.Equal(t, "Cosmic Contributor", cert.PrimarySkill)
	assert.Equal(t, []string{"Code Spark", "Stellar Coder", "Cosmic Contributor"}, cert.AllSkills)
	assert.Equal(t, "https://opengalaxy.test/api/certificates/view/"+cert.ID, cert.VerificationURL)
	assert.Equal(t, "https://github.com/ada", cert.GithubProfileURL)
	assert.Equal(t, "October 16, 2026", cert.IssuedDate)

	u.Badges = append(u.Badges, "Galaxy Explorer")
	u.Points = 7
	require.NoError(t, env.repos.Users.Save(ctx, u))

	again, created, err := env.svc.Certificates.Issue(ctx, "7")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, cert.ID, again.ID)
	assert.Equal(t, []string{"Code Spark", "Stellar Coder", "Cosmic Contributor"}, again.AllSkills)

	list, err := env.svc.Certificates.ListMine(ctx, u.ID.Hex())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestVerify(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.user(t, "7", "ada", 1, "Code Spark")
	cert, _, err := env.svc.Certificates.Issue(ctx, "7")
	require.NoError(t, err)

	v, err := env.svc.Certificates.Verify(ctx, cert.ID)
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.Equal(t, cert.ID, v.Certificate.ID)

	v, err = env.svc.Certificates.Verify(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Nil(t, v.Certificate)
}

func TestRenderings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.user(t, "7", "ada", 1, "Code Spark")
	cert, _, err := env.svc.Certificates.Issue(ctx, "7")
	require.NoError(t, err)

	html, err := env.svc.Certificates.RenderHTML(ctx, cert.ID)
	require.NoError(t, err)
	assert.Contains(t, string(html), cert.ID)

	pdf, err := env.svc.Certificates.RenderPDF(ctx, cert.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF"))

	qr, err := env.svc.Certificates.QRCode(ctx, cert.ID)
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG", string(qr[:4]))

	preview, err := env.svc.Certificates.Preview(ctx, cert.ID)
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG", string(preview[:4]))

	_, err = env.svc.Certificates.RenderHTML(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRenderPDF_PrinterFailureIsInternal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.user(t, "7", "ada", 1, "Code Spark")
	cert, _, err := env.svc.Certificates.Issue(ctx, "7")
	require.NoError(t, err)

	env.svc.Certificates.pdf = fakePDF{err: errPrinter}
	_, err = env.svc.Certificates.RenderPDF(ctx, cert.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.ErrorIs(t, err, errPrinter)
}
