package app_test

import (
	"context"
	"sync"
	"testing"

	"notary-backend/internal/app"
	"notary-backend/internal/hashing"
	"notary-backend/internal/model"
	"notary-backend/internal/pending"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type fakeRepo struct {
	mu    sync.Mutex
	users map[string]model.User
	orgs  map[string]model.Organization
	docs  []model.Document
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users: make(map[string]model.User),
		orgs:  make(map[string]model.Organization),
	}
}

func (r *fakeRepo) InsertUser(_ context.Context, user model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *fakeRepo) GetUserByID(_ context.Context, userID string) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return user, nil
}

func (r *fakeRepo) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return model.User{}, model.ErrNotFound
}

func (r *fakeRepo) GetUserByWallet(_ context.Context, address string) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.WalletAddress == address && address != "" {
			return user, nil
		}
	}
	return model.User{}, model.ErrNotFound
}

func (r *fakeRepo) GetOrganizationUsers(_ context.Context, orgID string) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var users []model.User
	for _, user := range r.users {
		if user.OrganizationID == orgID {
			users = append(users, user)
		}
	}
	return users, nil
}

func (r *fakeRepo) UpdateLoginNonce(_ context.Context, userID, nonce string) error {
	return r.updateUser(userID, func(u *model.User) { u.LoginNonce = nonce })
}

func (r *fakeRepo) UpdateOTPSecret(_ context.Context, userID, secret string) error {
	return r.updateUser(userID, func(u *model.User) { u.OTPSecret = secret })
}

func (r *fakeRepo) UpdateWalletAddress(_ context.Context, userID, address string) error {
	return r.updateUser(userID, func(u *model.User) { u.WalletAddress = address })
}

func (r *fakeRepo) updateUser(userID string, update func(*model.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return model.ErrNotFound
	}
	update(&user)
	r.users[userID] = user
	return nil
}

func (r *fakeRepo) InsertOrganization(_ context.Context, org model.Organization) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orgs[org.ID] = org
	return nil
}

func (r *fakeRepo) GetOrganization(_ context.Context, orgID string) (model.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	org, ok := r.orgs[orgID]
	if !ok {
		return model.Organization{}, model.ErrNotFound
	}
	return org, nil
}

func (r *fakeRepo) GetOrganizationByName(_ context.Context, name string) (model.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, org := range r.orgs {
		if org.Name == name {
			return org, nil
		}
	}
	return model.Organization{}, model.ErrNotFound
}

func (r *fakeRepo) SetContract(_ context.Context, orgID, contractAddress string, deployBlock uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	org, ok := r.orgs[orgID]
	if !ok || org.ContractAddress != "" {
		return model.ErrNotFound
	}
	org.ContractAddress = contractAddress
	org.DeployBlock = deployBlock
	r.orgs[orgID] = org
	return nil
}

func (r *fakeRepo) InsertDocument(_ context.Context, doc model.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append(r.docs, doc)
	return nil
}

func (r *fakeRepo) GetLatestDocument(_ context.Context, orgID, idHash string) (model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.docs) - 1; i >= 0; i-- {
		if r.docs[i].OrganizationID == orgID && r.docs[i].IDHash == idHash {
			return r.docs[i], nil
		}
	}
	return model.Document{}, model.ErrNotFound
}

// fakeLedger emulates the notary contract: the first anchoring of an id
// binds its original hash, every anchoring records the combined key, the id
// hash and the file hash, and emits an event.
type fakeLedger struct {
	mu        sync.Mutex
	clock     uint64
	block     uint64
	contracts map[string]*fakeContract
}

type fakeContract struct {
	original       map[[32]byte][32]byte
	timestamps     map[[32]byte]uint64
	fileTimestamps map[[32]byte]uint64
	events         []model.NotarizationEvent
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{clock: 1000, contracts: make(map[string]*fakeContract)}
}

func (l *fakeLedger) contract(address string) *fakeContract {
	c, ok := l.contracts[address]
	if !ok {
		c = &fakeContract{
			original:       make(map[[32]byte][32]byte),
			timestamps:     make(map[[32]byte]uint64),
			fileTimestamps: make(map[[32]byte]uint64),
		}
		l.contracts[address] = c
	}
	return c
}

func (l *fakeLedger) OriginalHash(_ context.Context, contract string, idHash [32]byte) ([32]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.contract(contract).original[idHash], nil
}

func (l *fakeLedger) Timestamp(_ context.Context, contract string, key [32]byte) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.contract(contract).timestamps[key], nil
}

func (l *fakeLedger) FileTimestamp(_ context.Context, contract string, docHash [32]byte) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.contract(contract).fileTimestamps[docHash], nil
}

func (l *fakeLedger) StoreDocumentHash(_ context.Context, contract, sender string, idHash, docHash [32]byte) (model.TxResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c := l.contract(contract)
	l.clock++
	l.block++

	if c.original[idHash] == ([32]byte{}) {
		c.original[idHash] = docHash
	}
	c.timestamps[hashing.CombineKey(idHash, docHash)] = l.clock
	c.timestamps[idHash] = l.clock
	c.fileTimestamps[docHash] = l.clock

	txHash := hashing.HexPrefixed(hashing.Calculate(append(idHash[:], byte(l.block))))
	c.events = append(c.events, model.NotarizationEvent{
		Sender:       sender,
		IDHash:       hashing.HexPrefixed(idHash),
		DocumentHash: hashing.HexPrefixed(docHash),
		Timestamp:    l.clock,
		TxHash:       txHash,
		BlockNumber:  l.block,
	})

	return model.TxResult{TxHash: txHash, BlockNumber: l.block}, nil
}

func (l *fakeLedger) Events(_ context.Context, contract string, fromBlock uint64, idHash *[32]byte) ([]model.NotarizationEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var events []model.NotarizationEvent
	for _, event := range l.contract(contract).events {
		if event.BlockNumber < fromBlock {
			continue
		}
		if idHash != nil && event.IDHash != hashing.HexPrefixed(*idHash) {
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

const (
	testContract = "0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB"
	testSender   = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
)

type testEnv struct {
	app     app.App
	repo    *fakeRepo
	ledger  *fakeLedger
	pending *pending.Store
	org     model.Organization
	user    model.User
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	repo := newFakeRepo()
	ledgerClient := newFakeLedger()
	store := pending.NewStore(0)
	t.Cleanup(store.Close)

	org := model.Organization{
		ID:              uuid.NewString(),
		Name:            "TestOrg",
		ChainAddress:    testSender,
		ContractAddress: testContract,
	}
	repo.orgs[org.ID] = org

	user := newTestUser(t, org.ID, "alice@test.org", "Secret123")
	repo.users[user.ID] = user

	return testEnv{
		app:     app.NewApp(zap.NewNop(), repo, ledgerClient, store),
		repo:    repo,
		ledger:  ledgerClient,
		pending: store,
		org:     org,
		user:    user,
	}
}

func newTestUser(t *testing.T, orgID, email, password string) model.User {
	t.Helper()

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	return model.User{
		ID:             uuid.NewString(),
		OrganizationID: orgID,
		Email:          email,
		PasswordHash:   string(passwordHash),
	}
}
