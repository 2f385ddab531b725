package services

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const sensBaseURL = "https://sens.apigw.ntruss.com"

// AlimtalkButton is an optional link button attached to a message.
type AlimtalkButton struct {
	Order      int    `json:"order"`
	Type       string `json:"type"`
	Name       string `json:"name"`
	LinkMobile string `json:"linkMobile,omitempty"`
	LinkPC     string `json:"linkPc,omitempty"`
}

// AlimtalkSender sends one templated kakao message. Implemented by the NCP
// SENS client below; tests substitute a recorder.
type AlimtalkSender interface {
	Send(templateCode, phone, content string, buttons []AlimtalkButton) error
}

// AlimtalkClient calls the NCP SENS alimtalk API with the HMAC-SHA256
// request signature the gateway requires.
type AlimtalkClient struct {
	serviceID  string
	accessKey  string
	secretKey  string
	plusFriend string
	client     *http.Client
}

func NewAlimtalkClient(serviceID, accessKey, secretKey, plusFriend string) *AlimtalkClient {
	return &AlimtalkClient{
		serviceID:  serviceID,
		accessKey:  accessKey,
		secretKey:  secretKey,
		plusFriend: plusFriend,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

type alimtalkMessage struct {
	CountryCode    string           `json:"countryCode"`
	To             string           `json:"to"`
	Content        string           `json:"content"`
	Buttons        []AlimtalkButton `json:"buttons,omitempty"`
	UseSmsFailover bool             `json:"useSmsFailover"`
}

type alimtalkRequest struct {
	PlusFriendID string            `json:"plusFriendId"`
	TemplateCode string            `json:"templateCode"`
	Messages     []alimtalkMessage `json:"messages"`
}

func (a *AlimtalkClient) Send(templateCode, phone, content string, buttons []AlimtalkButton) error {
	path := fmt.Sprintf("/alimtalk/v2/services/%s/messages", a.serviceID)
	body := alimtalkRequest{
		PlusFriendID: a.plusFriend,
		TemplateCode: templateCode,
		Messages: []alimtalkMessage{
			{
				CountryCode:    "82",
				To:             phone,
				Content:        content,
				Buttons:        buttons,
				UseSmsFailover: false,
			},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	timestamp := fmt.Sprintf("%d", time.Now().UnixMilli())
	req, err := http.NewRequest(http.MethodPost, sensBaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("x-ncp-apigw-timestamp", timestamp)
	req.Header.Set("x-ncp-iam-access-key", a.accessKey)
	req.Header.Set("x-ncp-apigw-signature-v2", a.makeSignature(timestamp, http.MethodPost, path))

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// SENS answers 202 Accepted on success
	if resp.StatusCode >= 300 {
		return fmt.Errorf("alimtalk send failed with status %d", resp.StatusCode)
	}
	return nil
}

func (a *AlimtalkClient) makeSignature(timestamp, method, path string) string {
	message := fmt.Sprintf("%s %s\n%s\n%s", method, path, timestamp, a.accessKey)
	mac := hmac.New(sha256.New, []byte(a.secretKey))
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
