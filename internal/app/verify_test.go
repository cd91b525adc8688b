package app_test

import (
	"context"
	"testing"

	"notary-backend/internal/app"
	"notary-backend/internal/hashing"
	"notary-backend/internal/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestVerify(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.app.Verify(ctx, env.user, []byte("content"))
	assert.ErrorIs(t, err, app.ErrNotVerified)

	_, err = env.app.Notarize(ctx, env.user, []byte("content"), "text/plain", "invoice-1")
	require.NoError(t, err)

	timestamp, err := env.app.Verify(ctx, env.user, []byte("content"))
	require.NoError(t, err)
	assert.NotZero(t, timestamp)

	// a single changed byte breaks verification
	_, err = env.app.Verify(ctx, env.user, []byte("content!"))
	assert.ErrorIs(t, err, app.ErrNotVerified)

	_, err = env.app.Verify(ctx, env.user, nil)
	assert.ErrorIs(t, err, app.ErrInvalidInput)
}

func TestVerifyReportsLatestAnchoring(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.app.Notarize(ctx, env.user, []byte("content"), "text/plain", "invoice-1")
	require.NoError(t, err)
	_, err = env.app.Notarize(ctx, env.user, []byte("content"), "text/plain", "invoice-2")
	require.NoError(t, err)

	events, err := env.ledger.Events(ctx, testContract, 0, nil)
	require.NoError(t, err)
	require.Len(t, events, 2)

	timestamp, err := env.app.Verify(ctx, env.user, []byte("content"))
	require.NoError(t, err)
	assert.Equal(t, events[1].Timestamp, timestamp)
}

func TestListDocuments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	listing, err := env.app.ListDocuments(ctx, env.user)
	require.NoError(t, err)
	assert.Empty(t, listing.Documents)

	_, err = env.app.Notarize(ctx, env.user, []byte("a"), "text/plain", "doc-a")
	require.NoError(t, err)
	_, err = env.app.Notarize(ctx, env.user, []byte("b"), "text/plain", "doc-b")
	require.NoError(t, err)

	listing, err = env.app.ListDocuments(ctx, env.user)
	require.NoError(t, err)
	require.Len(t, listing.Documents, 2)

	// newest first
	assert.True(t, listing.Documents[0].Timestamp > listing.Documents[1].Timestamp)
	assert.Equal(t, testContract, listing.ContractAddress)
}

func TestGetDocument(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.app.GetDocument(ctx, env.user, "doc-a")
	assert.ErrorIs(t, err, app.ErrNotFound)

	_, err = env.app.Notarize(ctx, env.user, []byte("a"), "text/plain", "doc-a")
	require.NoError(t, err)

	details, err := env.app.GetDocument(ctx, env.user, "doc-a")
	require.NoError(t, err)
	assert.Equal(t, "doc-a", details.DocumentID)
	assert.Equal(t, hashing.HexPrefixed(hashing.CalculateFromStr("doc-a")), details.Event.IDHash)
	assert.Equal(t, "TestOrg", details.Organization)

	_, err = env.app.GetDocument(ctx, env.user, "")
	assert.ErrorIs(t, err, app.ErrInvalidInput)
}

func TestDocumentHistory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.app.DocumentHistory(ctx, env.user, "doc-a")
	assert.ErrorIs(t, err, app.ErrNotFound)

	_, err = env.app.Notarize(ctx, env.user, []byte("a"), "text/plain", "doc-a")
	require.NoError(t, err)
	// an unrelated anchoring must not show up in doc-a's history
	_, err = env.app.Notarize(ctx, env.user, []byte("x"), "text/plain", "doc-x")
	require.NoError(t, err)

	history, err := env.app.DocumentHistory(ctx, env.user, "doc-a")
	require.NoError(t, err)
	require.Len(t, history.Entries, 1)
	assert.Equal(t, hashing.HexPrefixed(hashing.Calculate([]byte("a"))), history.Entries[0].DocumentHash)
}

func TestGetStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	stats, err := env.app.GetStats(ctx, env.user)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalNotarizations)
	assert.Nil(t, stats.First)
	assert.Nil(t, stats.Latest)

	_, err = env.app.Notarize(ctx, env.user, []byte("a"), "text/plain", "doc-a")
	require.NoError(t, err)
	_, err = env.app.Notarize(ctx, env.user, []byte("b"), "text/plain", "doc-b")
	require.NoError(t, err)

	stats, err = env.app.GetStats(ctx, env.user)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalNotarizations)
	require.NotNil(t, stats.First)
	require.NotNil(t, stats.Latest)
	assert.Equal(t, hashing.HexPrefixed(hashing.Calculate([]byte("a"))), stats.First.DocumentHash)
	assert.Equal(t, hashing.HexPrefixed(hashing.Calculate([]byte("b"))), stats.Latest.DocumentHash)
	assert.True(t, stats.First.Timestamp < stats.Latest.Timestamp)
}

func TestUserActivities(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.app.UserActivities(ctx, env.user)
	assert.ErrorIs(t, err, app.ErrNoWalletAddress)

	// the single-call flow submits from the organization account, so a user
	// holding that address sees the activity
	require.NoError(t, env.repo.UpdateWalletAddress(ctx, env.user.ID, testSender))
	user, err := env.repo.GetUserByID(ctx, env.user.ID)
	require.NoError(t, err)

	_, err = env.app.Notarize(ctx, user, []byte("a"), "text/plain", "doc-a")
	require.NoError(t, err)

	activities, err := env.app.UserActivities(ctx, user)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, testSender, activities[0].Sender)

	// a different wallet sees nothing
	other := newTestUser(t, env.org.ID, "carol@test.org", "Carol123")
	other.WalletAddress = "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"
	require.NoError(t, env.repo.InsertUser(ctx, other))

	activities, err = env.app.UserActivities(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, activities)
}

func TestDownloadDocument(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.app.DownloadDocument(ctx, env.user, "doc-a")
	assert.ErrorIs(t, err, app.ErrNotFound)

	_, err = env.app.Notarize(ctx, env.user, []byte("a"), "text/plain", "doc-a")
	require.NoError(t, err)

	doc, err := env.app.DownloadDocument(ctx, env.user, "doc-a")
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), doc.FileData)
	assert.Equal(t, "text/plain", doc.MimeType)

	// the 0x id hash works as an identifier too
	idHash := hashing.HexPrefixed(hashing.CalculateFromStr("doc-a"))
	doc, err = env.app.DownloadDocument(ctx, env.user, idHash)
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), doc.FileData)

	// documents of another organization are invisible
	otherOrgUser := newTestUser(t, "other-org", "dave@test.org", "Dave1234")
	_, err = env.app.DownloadDocument(ctx, otherOrgUser, "doc-a")
	assert.ErrorIs(t, err, app.ErrNotFound)
}

type failingLedger struct {
	*fakeLedger
	err error
}

func (l failingLedger) FileTimestamp(ctx context.Context, contract string, docHash [32]byte) (uint64, error) {
	return 0, l.err
}

func TestVerifyLedgerFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	broken := app.NewApp(zap.NewNop(), env.repo, failingLedger{env.ledger, assert.AnError}, env.pending)
	_, err := broken.Verify(ctx, env.user, []byte("content"))
	assert.ErrorIs(t, err, app.ErrLedger)

	// a mining timeout keeps its identity for the transport layer
	timingOut := app.NewApp(zap.NewNop(), env.repo, failingLedger{env.ledger, ledger.ErrTimeout}, env.pending)
	_, err = timingOut.Verify(ctx, env.user, []byte("content"))
	assert.ErrorIs(t, err, ledger.ErrTimeout)
}
