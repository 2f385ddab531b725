package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// BankTransaction is one raw statement row from the bank lookup.
type BankTransaction struct {
	TransactionBy string    `json:"transaction_by"`
	Date          time.Time `json:"date"`
	Amount        int       `json:"amount"`
	Balance       int       `json:"balance"`
}

// TransactionFetcher is the opaque bank-statement collaborator. The real
// implementation talks to the browser-automation sidecar; tests inject fakes.
type TransactionFetcher interface {
	FetchTransactions(days int) ([]BankTransaction, error)
}

// FastlookupClient fetches recent transactions from the KB fast-lookup
// scraper sidecar over HTTP. The sidecar owns the virtual-keypad session;
// this client only passes credentials through and decodes the result.
type FastlookupClient struct {
	baseURL   string
	accountNo string
	birthday  string
	password  string
	client    *http.Client
}

func NewFastlookupClient(baseURL, accountNo, birthday, password string) *FastlookupClient {
	return &FastlookupClient{
		baseURL:   baseURL,
		accountNo: accountNo,
		birthday:  birthday,
		password:  password,
		// scraping a bank session is slow; generous timeout on purpose
		client: &http.Client{Timeout: 90 * time.Second},
	}
}

func (f *FastlookupClient) FetchTransactions(days int) ([]BankTransaction, error) {
	q := url.Values{}
	q.Set("bank_num", f.accountNo)
	q.Set("birthday", f.birthday)
	q.Set("password", f.password)
	q.Set("days", strconv.Itoa(days))

	resp, err := f.client.Get(f.baseURL + "/transactions?" + q.Encode())
	if err != nil {
		return nil, fmt.Errorf("bank lookup request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bank lookup returned status %d", resp.StatusCode)
	}

	var transactions []BankTransaction
	if err := json.NewDecoder(resp.Body).Decode(&transactions); err != nil {
		return nil, fmt.Errorf("failed to decode bank transactions: %w", err)
	}
	return transactions, nil
}
