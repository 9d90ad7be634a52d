package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"
)

// RTCCredentials are the per-channel credentials handed to a client joining
// a room.
type RTCCredentials struct {
	AppID       string    `json:"appId"`
	ChannelName string    `json:"channelName"`
	UID         int64     `json:"uid"`
	Token       string    `json:"rtcToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// RTCCredentialProvider issues credentials for the video SDK. The vendor
// credential service shares this call shape.
type RTCCredentialProvider interface {
	Credentials(channelName string, uid int64) (RTCCredentials, error)
}

type hmacRTCProvider struct {
	appID string
	cert  string
	ttl   time.Duration
}

// NewHMACRTCProvider signs short-lived channel grants locally with the app
// certificate.
func NewHMACRTCProvider(appID, cert string, ttl time.Duration) RTCCredentialProvider {
	return &hmacRTCProvider{appID: appID, cert: cert, ttl: ttl}
}

func (p *hmacRTCProvider) Credentials(channelName string, uid int64) (RTCCredentials, error) {
	expiresAt := time.Now().Add(p.ttl)

	mac := hmac.New(sha256.New, []byte(p.cert))
	fmt.Fprintf(mac, "%s|%s|%d|%d", p.appID, channelName, uid, expiresAt.Unix())
	token := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))

	return RTCCredentials{
		AppID:       p.appID,
		ChannelName: channelName,
		UID:         uid,
		Token:       token,
		ExpiresAt:   expiresAt,
	}, nil
}
