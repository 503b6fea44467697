package payments

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// Gateway parameter names.
const (
	ParamAmount       = "vnp_Amount"
	ParamTxnRef       = "vnp_TxnRef"
	ParamResponseCode = "vnp_ResponseCode"
	ParamSecureHash   = "vnp_SecureHash"
	ParamHashType     = "vnp_SecureHashType"
)

// Signer computes the gateway HMAC-SHA512 over the sorted, non-empty
// parameters, excluding the hash fields themselves.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) Signer {
	return Signer{secret: []byte(secret)}
}

func (s Signer) Sign(params url.Values) string {
	mac := hmac.New(sha512.New, s.secret)
	mac.Write([]byte(hashData(params)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether params carry a valid signature.
func (s Signer) Verify(params url.Values) bool {
	received := strings.ToLower(params.Get(ParamSecureHash))
	if received == "" || len(s.secret) == 0 {
		return false
	}
	return hmac.Equal([]byte(received), []byte(s.Sign(params)))
}

func hashData(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == ParamSecureHash || k == ParamHashType || params.Get(k) == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+url.QueryEscape(params.Get(k)))
	}
	return strings.Join(parts, "&")
}
