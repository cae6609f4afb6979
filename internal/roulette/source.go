package roulette

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"math/big"
	"math/rand"
	"sync"
)

// Source draws a pocket in [0, n).
type Source interface {
	Intn(n int) int
}

type lockedSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandSource returns a seedable pseudo-random source safe for concurrent use.
func NewRandSource(seed int64) Source {
	return &lockedSource{rnd: rand.New(rand.NewSource(seed))}
}

func (s *lockedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Intn(n)
}

// FairSource derives a draw from HMAC-SHA256(serverSeed, "clientSeed:nonce"),
// so the result can be recomputed once the server seed is revealed.
type FairSource struct {
	ServerSeed string
	ClientSeed string
	Nonce      int64
}

func (f FairSource) Hash() string {
	h := hmac.New(sha256.New, []byte(f.ServerSeed))
	h.Write([]byte(fmt.Sprintf("%s:%d", f.ClientSeed, f.Nonce)))
	return hex.EncodeToString(h.Sum(nil))
}

func (f FairSource) Intn(n int) int {
	return pocketFromHash(f.Hash(), n)
}

// Use first 52 bits (13 hex characters) of the hash as a float in [0, 1).
func pocketFromHash(hash string, n int) int {
	v := new(big.Int)
	v.SetString(hash[:13], 16)

	f := float64(v.Int64()) / math.Pow(2, 52)
	pocket := int(math.Floor(f * float64(n)))
	if pocket >= n {
		pocket = n - 1
	}
	return pocket
}

// VerifyDraw recomputes the pocket for a revealed server seed.
func VerifyDraw(serverSeed, clientSeed string, nonce int64, rangeMax int) (int, string) {
	src := FairSource{ServerSeed: serverSeed, ClientSeed: clientSeed, Nonce: nonce}
	return src.Intn(rangeMax + 1), src.Hash()
}

// ServerSeedHash is the commitment published before the seed is revealed.
func ServerSeedHash(serverSeed string) string {
	hash := sha256.Sum256([]byte(serverSeed))
	return hex.EncodeToString(hash[:])
}
