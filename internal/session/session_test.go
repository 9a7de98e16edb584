package session_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ashraf950/timesheet-client/internal/core/datamodel/user"
	"github.com/ashraf950/timesheet-client/internal/session"
	"github.com/ashraf950/timesheet-client/pkg/logger"
)

func TestSession(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Session Suite")
}

type brokenStore struct {
	*session.MemoryStore
}

func (brokenStore) Put(context.Context, string, []byte) error {
	return errors.New("disk full")
}

// userlessStore fails to write the user record only.
type userlessStore struct {
	*session.MemoryStore
}

func (s userlessStore) Put(ctx context.Context, key string, value []byte) error {
	if key == session.KeyUser {
		return errors.New("disk full")
	}
	return s.MemoryStore.Put(ctx, key, value)
}

func testKey() []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

var alice = user.User{ID: "u1", Name: "Alice", Email: "alice@example.com", Role: user.RoleManager}

var _ = Describe("Cipher", func() {
	It("should round trip sealed values", func() {
		c, err := session.NewCipher(testKey())
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Configured()).To(BeTrue())

		sealed, err := c.Seal([]byte("secret-token"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(sealed)).NotTo(ContainSubstring("secret-token"))

		plain, err := c.Open(sealed)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(plain)).To(Equal("secret-token"))
	})

	It("should refuse values sealed with another key", func() {
		c1, _ := session.NewCipher(testKey())
		other := testKey()
		other[0] = 0xff
		c2, _ := session.NewCipher(other)

		sealed, _ := c1.Seal([]byte("x"))
		_, err := c2.Open(sealed)
		Expect(err).To(HaveOccurred())

		_, err = c2.Open([]byte("short"))
		Expect(err).To(HaveOccurred())
	})

	It("should pass values through without a key", func() {
		c, err := session.NewCipher(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Configured()).To(BeFalse())
		sealed, _ := c.Seal([]byte("plain"))
		Expect(string(sealed)).To(Equal("plain"))
	})

	It("should reject keys of the wrong size", func() {
		_, err := session.NewCipher([]byte("too-short"))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Manager", func() {
	var (
		ctx   context.Context
		store *session.MemoryStore
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = session.NewMemoryStore()
	})

	newManager := func(key []byte) *session.Manager {
		c, err := session.NewCipher(key)
		Expect(err).NotTo(HaveOccurred())
		return session.NewManager(store, c, logger.Discard())
	}

	It("should restore a saved session in a new process", func() {
		Expect(newManager(testKey()).Save(ctx, "tok", alice)).To(Succeed())

		m := newManager(testKey())
		Expect(m.Init(ctx)).To(Succeed())
		Expect(m.Token()).To(Equal("tok"))
		u, ok := m.User()
		Expect(ok).To(BeTrue())
		Expect(u.Name).To(Equal("Alice"))
		Expect(u.Role).To(Equal(user.RoleManager))

		current, ok := m.Current()
		Expect(ok).To(BeTrue())
		Expect(current.Token).To(Equal("tok"))
	})

	It("should start unauthenticated when only the token is stored", func() {
		Expect(store.Put(ctx, session.KeyToken, []byte("tok"))).To(Succeed())

		m := newManager(nil)
		Expect(m.Init(ctx)).To(Succeed())
		Expect(m.Token()).To(BeEmpty())
		_, ok := m.Current()
		Expect(ok).To(BeFalse())
	})

	It("should wipe values it cannot decrypt", func() {
		Expect(newManager(testKey()).Save(ctx, "tok", alice)).To(Succeed())

		other := testKey()
		other[31] = 0
		m := newManager(other)
		Expect(m.Init(ctx)).To(Succeed())
		Expect(m.Token()).To(BeEmpty())

		_, ok, _ := store.Get(ctx, session.KeyToken)
		Expect(ok).To(BeFalse())
	})

	It("should wipe a corrupt user record", func() {
		Expect(store.Put(ctx, session.KeyToken, []byte("tok"))).To(Succeed())
		Expect(store.Put(ctx, session.KeyUser, []byte("{not json"))).To(Succeed())

		m := newManager(nil)
		Expect(m.Init(ctx)).To(Succeed())
		_, ok := m.User()
		Expect(ok).To(BeFalse())
		_, ok, _ = store.Get(ctx, session.KeyUser)
		Expect(ok).To(BeFalse())
	})

	It("should forget everything on Clear", func() {
		m := newManager(nil)
		Expect(m.Save(ctx, "tok", alice)).To(Succeed())
		Expect(m.Clear(ctx)).To(Succeed())

		Expect(m.Token()).To(BeEmpty())
		_, ok, _ := store.Get(ctx, session.KeyToken)
		Expect(ok).To(BeFalse())
		_, ok, _ = store.Get(ctx, session.KeyUser)
		Expect(ok).To(BeFalse())
	})

	It("should keep the in-memory session when persisting fails", func() {
		m := session.NewManager(brokenStore{session.NewMemoryStore()}, nil, logger.Discard())
		Expect(m.Save(ctx, "tok", alice)).To(MatchError(ContainSubstring("disk full")))
		Expect(m.Token()).To(Equal("tok"))
	})

	It("should not leave a token behind when the user cannot be written", func() {
		store := session.NewMemoryStore()
		m := session.NewManager(userlessStore{store}, nil, logger.Discard())

		Expect(m.Save(ctx, "tok", alice)).To(MatchError(ContainSubstring("disk full")))
		_, ok, err := store.Get(ctx, session.KeyToken)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	Describe("ExpiresAt", func() {
		It("should read the exp claim", func() {
			exp := time.Now().Add(time.Hour).Truncate(time.Second)
			signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(exp),
			}).SignedString([]byte("server-secret"))
			Expect(err).NotTo(HaveOccurred())

			m := newManager(nil)
			Expect(m.Save(ctx, signed, alice)).To(Succeed())
			at, ok := m.ExpiresAt()
			Expect(ok).To(BeTrue())
			Expect(at.Equal(exp)).To(BeTrue())
		})

		It("should report nothing for opaque tokens", func() {
			m := newManager(nil)
			Expect(m.Save(ctx, "opaque", alice)).To(Succeed())
			_, ok := m.ExpiresAt()
			Expect(ok).To(BeFalse())
		})
	})
})

var _ = Describe("SQLiteStore", func() {
	var (
		ctx   context.Context
		path  string
		store *session.SQLiteStore
	)

	BeforeEach(func() {
		ctx = context.Background()
		path = filepath.Join(GinkgoT().TempDir(), "nested", "session.db")
		var err error
		store, err = session.OpenSQLite(ctx, path)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { _ = store.Close() })
	})

	It("should put, overwrite and delete values", func() {
		Expect(store.Put(ctx, "token", []byte("a"))).To(Succeed())
		Expect(store.Put(ctx, "token", []byte("b"))).To(Succeed())

		v, ok, err := store.Get(ctx, "token")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(string(v)).To(Equal("b"))

		Expect(store.Delete(ctx, "token", "user")).To(Succeed())
		_, ok, err = store.Get(ctx, "token")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("should survive a reopen", func() {
		m := session.NewManager(store, nil, logger.Discard())
		Expect(m.Save(ctx, "tok", alice)).To(Succeed())
		Expect(store.Close()).To(Succeed())

		reopened, err := session.OpenSQLite(ctx, path)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { _ = reopened.Close() })

		restored := session.NewManager(reopened, nil, logger.Discard())
		Expect(restored.Init(ctx)).To(Succeed())
		u, ok := restored.User()
		Expect(ok).To(BeTrue())
		Expect(u.Key()).To(Equal("u1"))
	})

	It("should roll the schema back and forward", func() {
		db, err := store.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(session.Migrate(ctx, db, true)).To(Succeed())
		Expect(store.Put(ctx, "token", []byte("x"))).NotTo(Succeed())
		Expect(session.Migrate(ctx, db, false)).To(Succeed())
		Expect(store.Put(ctx, "token", []byte("x"))).To(Succeed())
	})
})
