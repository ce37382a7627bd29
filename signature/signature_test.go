package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSign_MatchesHMAC(t *testing.T) {
	mac := hmac.New(sha256.New, []byte("test_secret"))
	mac.Write([]byte("order_ABC|pay_XYZ"))
	want := hex.EncodeToString(mac.Sum(nil))

	assert.Equal(t, want, Sign("order_ABC", "pay_XYZ", "test_secret"))
}

func TestVerify(t *testing.T) {
	valid := Sign("order_ABC", "pay_XYZ", "test_secret")

	assert.True(t, Verify("order_ABC", "pay_XYZ", "test_secret", valid))
	assert.False(t, Verify("order_ABC", "pay_XYZ", "other_secret", valid))
	assert.False(t, Verify("order_ABC", "pay_OTHER", "test_secret", valid))
	assert.False(t, Verify("order_ABC", "pay_XYZ", "test_secret", ""))
	assert.False(t, Verify("order_ABC", "pay_XYZ", "test_secret", valid[:10]))
}

func TestVerify_SingleCharacterChanges(t *testing.T) {
	const orderID, paymentID, secret = "order_ABC", "pay_XYZ", "test_secret"
	valid := Sign(orderID, paymentID, secret)

	flip := func(s string, i int) string {
		b := []byte(s)
		if b[i] == 'a' {
			b[i] = 'b'
		} else {
			b[i] = 'a'
		}
		return string(b)
	}

	for i := range orderID {
		assert.False(t, Verify(flip(orderID, i), paymentID, secret, valid), "orderID index %d", i)
	}
	for i := range paymentID {
		assert.False(t, Verify(orderID, flip(paymentID, i), secret, valid), "paymentID index %d", i)
	}
	for i := range secret {
		assert.False(t, Verify(orderID, paymentID, flip(secret, i), valid), "secret index %d", i)
	}
	for i := range valid {
		assert.False(t, Verify(orderID, paymentID, secret, flip(valid, i)), "signature index %d", i)
	}
}

func TestVerify_CaseSensitive(t *testing.T) {
	valid := Sign("order_1", "pay_1", "k")
	upper := strings.ToUpper(valid)
	if upper == valid {
		t.Skip("signature has no hex letters")
	}
	assert.False(t, Verify("order_1", "pay_1", "k", upper))
}
