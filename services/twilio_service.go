package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// CallResult is what the provider reports back when a call is placed.
type CallResult struct {
	CallSid      string `json:"callSid"`
	Status       string `json:"status"`
	MaskedNumber string `json:"maskedNumber"`
	Message      string `json:"message"`
}

// CallStatus is a live snapshot of a placed call.
type CallStatus struct {
	Sid      string `json:"sid"`
	Status   string `json:"status"`
	Duration string `json:"duration"`
}

// CallProvider places masked calls and produces the call-control document.
// TwilioService is the real implementation; tests substitute a counting fake.
type CallProvider interface {
	Enabled() bool
	CreateMaskedCall(ctx context.Context, callerPhone, ownerPhone, baseURL string) (*CallResult, error)
	ConnectTwiML(ownerPhone string) string
}

// TwilioService talks to the Twilio Calls API over plain REST.
type TwilioService struct {
	accountSID  string
	authToken   string
	phoneNumber string
	apiBase     string
	httpClient  *http.Client
}

func NewTwilioService(accountSID, authToken, phoneNumber string, timeout time.Duration) *TwilioService {
	return &TwilioService{
		accountSID:  accountSID,
		authToken:   authToken,
		phoneNumber: phoneNumber,
		apiBase:     "https://api.twilio.com",
		httpClient:  &http.Client{Timeout: timeout},
	}
}

func (t *TwilioService) Enabled() bool {
	return t.accountSID != "" && t.authToken != ""
}

// CreateMaskedCall rings the caller first, presenting the service's masked
// number. When the caller answers, Twilio fetches the connect webhook (which
// carries the owner's number in its path) and bridges the second leg. The
// call id and status come back immediately; completion arrives later on the
// status webhook. Failures are not retried.
func (t *TwilioService) CreateMaskedCall(ctx context.Context, callerPhone, ownerPhone, baseURL string) (*CallResult, error) {
	if !t.Enabled() {
		return nil, fmt.Errorf("twilio is not configured")
	}
	if callerPhone == "" || ownerPhone == "" {
		return nil, fmt.Errorf("both caller and owner phone numbers are required")
	}

	formattedCaller := FormatPhone(callerPhone)
	formattedOwner := FormatPhone(ownerPhone)

	form := url.Values{}
	form.Set("To", formattedCaller)
	form.Set("From", t.phoneNumber)
	form.Set("Url", fmt.Sprintf("%s/api/call/connect/%s", baseURL, url.PathEscape(formattedOwner)))
	form.Set("Method", "GET")
	form.Set("StatusCallback", baseURL+"/api/call/status")
	form.Set("StatusCallbackMethod", "POST")
	for _, event := range []string{"initiated", "ringing", "answered", "completed"} {
		form.Add("StatusCallbackEvent", event)
	}

	endpoint := t.apiBase + "/2010-04-01/Accounts/" + t.accountSID + "/Calls.json"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(t.accountSID, t.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twilio request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		return nil, &twilioHTTPError{Status: res.StatusCode, Body: string(body)}
	}

	var call struct {
		Sid    string `json:"sid"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(res.Body).Decode(&call); err != nil {
		return nil, fmt.Errorf("failed to decode twilio response: %w", err)
	}

	return &CallResult{
		CallSid:      call.Sid,
		Status:       call.Status,
		MaskedNumber: t.phoneNumber,
		Message:      "Call initiated. You will receive a call from our masked number shortly.",
	}, nil
}

// GetCallStatus fetches the live state of a placed call. Returns nil when
// the integration is disabled or the lookup fails; status is advisory only.
func (t *TwilioService) GetCallStatus(ctx context.Context, callSid string) *CallStatus {
	if !t.Enabled() || callSid == "" {
		return nil
	}

	endpoint := t.apiBase + "/2010-04-01/Accounts/" + t.accountSID + "/Calls/" + callSid + ".json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil
	}
	req.SetBasicAuth(t.accountSID, t.authToken)

	res, err := t.httpClient.Do(req)
	if err != nil {
		return nil
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		return nil
	}

	status := &CallStatus{}
	if err := json.NewDecoder(res.Body).Decode(status); err != nil {
		return nil
	}
	return status
}

// ConnectTwiML is the call-control document Twilio fetches once the caller
// answers. It is a pure function of the owner's phone number: every fetch
// regenerates the same script, so no call-session state is kept server-side.
// Recording stays off and the masked number is the caller id for the
// bridged leg.
func (t *TwilioService) ConnectTwiML(ownerPhone string) string {
	escaped := escapeXML(ownerPhone)

	return `<?xml version="1.0" encoding="UTF-8"?>
<Response>
  <Say voice="alice">Connecting you to the vehicle owner now. Please hold.</Say>
  <Dial callerId="` + escapeXML(t.phoneNumber) + `" record="false">
    <Number>` + escaped + `</Number>
  </Dial>
  <Say voice="alice">The call has ended. Thank you.</Say>
</Response>`
}

var nonDigits = regexp.MustCompile(`\D`)

// FormatPhone keeps numbers that already carry a +, otherwise strips
// everything but digits and prefixes one.
func FormatPhone(phone string) string {
	if strings.HasPrefix(phone, "+") {
		return phone
	}
	return "+" + nonDigits.ReplaceAllString(phone, "")
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

type twilioHTTPError struct {
	Status int
	Body   string
}

func (e *twilioHTTPError) Error() string {
	return fmt.Sprintf("twilio call failed with status %d", e.Status)
}
