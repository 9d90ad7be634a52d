package hangouts

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"strings"

	hashids "github.com/speps/go-hashids/v2"
)

// ChannelNamer derives short, non-guessable channel slugs for rooms. The
// slug encodes the host id plus a random discriminator, so two rooms from
// the same host never collide.
type ChannelNamer struct {
	h *hashids.HashID
}

func NewChannelNamer(salt string) (*ChannelNamer, error) {
	hd := hashids.NewData()
	hd.Salt = salt
	hd.MinLength = 8
	h, err := hashids.NewWithData(hd)
	if err != nil {
		return nil, err
	}
	return &ChannelNamer{h: h}, nil
}

func (n *ChannelNamer) ChannelName(hostID int64) (string, error) {
	var disc [4]byte
	if _, err := rand.Read(disc[:]); err != nil {
		return "", err
	}
	nonce := int(binary.BigEndian.Uint32(disc[:]) & 0x7fffffff)

	id, err := n.h.EncodeInt64([]int64{hostID, int64(nonce)})
	if err != nil {
		return "", err
	}
	return "room-" + strings.ToLower(id), nil
}

// NewJoinToken returns a fresh private-room join token together with the
// digest stored at rest. The plain token is shown to the host exactly once.
func NewJoinToken() (token, tokenHash string, err error) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(buf[:])
	return token, HashJoinToken(token), nil
}

// HashJoinToken digests a join token for storage or comparison.
func HashJoinToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
