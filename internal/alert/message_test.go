package alert

import (
	"errors"
	"strings"
	"testing"
	"time"

	pkgerrors "github.com/pkg/errors"
)

var fixedNow = time.Date(2026, 3, 4, 5, 6, 7, 0, time.Local)

func TestComposeHeaderWithoutCause(t *testing.T) {
	msg, err := Compose("FTPS health check failed", "ftp.example.com:21", "", nil, fixedNow)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	want := "Unable to connect to FTPS server ftp.example.com:21 at 2026-03-04 05:06:07"
	if !strings.Contains(msg.HTML, want) {
		t.Fatalf("expected header %q in body:\n%s", want, msg.HTML)
	}
	for _, absent := range []string{"Error:", "Origin:", "<pre>"} {
		if strings.Contains(msg.HTML, absent) {
			t.Fatalf("expected no cause section, found %q in:\n%s", absent, msg.HTML)
		}
	}
	if msg.Subject != "FTPS health check failed" || !msg.Timestamp.Equal(fixedNow) {
		t.Fatalf("unexpected message metadata: %+v", msg)
	}
}

func TestComposeIncludesMessageOriginAndStack(t *testing.T) {
	cause := pkgerrors.New("connection refused")
	msg, err := Compose("s", "ftp.example.com:21", "run-1", cause, fixedNow)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if !strings.Contains(msg.HTML, "connection refused") {
		t.Fatalf("expected cause message in body:\n%s", msg.HTML)
	}
	if !strings.Contains(msg.HTML, "TestComposeIncludesMessageOriginAndStack") {
		t.Fatalf("expected originating function in body:\n%s", msg.HTML)
	}
	if !strings.Contains(msg.HTML, "message_test.go") {
		t.Fatalf("expected stack trace in body:\n%s", msg.HTML)
	}
	if !strings.Contains(msg.HTML, "Run: run-1") {
		t.Fatalf("expected run id in body:\n%s", msg.HTML)
	}
	if strings.Contains(msg.HTML, "Inner error") {
		t.Fatalf("unexpected inner cause for unwrapped error:\n%s", msg.HTML)
	}
}

func TestComposeShowsInnerCause(t *testing.T) {
	inner := errors.New("530 Login incorrect")
	outer := pkgerrors.Wrap(inner, "ftps login")
	msg, err := Compose("s", "h:21", "", outer, fixedNow)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if !strings.Contains(msg.HTML, "Inner error:</b> 530 Login incorrect") {
		t.Fatalf("expected inner cause section:\n%s", msg.HTML)
	}
	if !strings.Contains(msg.HTML, "*errors.errorString") {
		t.Fatalf("expected type as origin for inner cause without stack:\n%s", msg.HTML)
	}
}

func TestComposeEscapesHTML(t *testing.T) {
	msg, err := Compose("s", "h:21", "", errors.New("<script>alert(1)</script>"), fixedNow)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if strings.Contains(msg.HTML, "<script>") {
		t.Fatalf("expected error text to be escaped:\n%s", msg.HTML)
	}
}

func TestInnerCauseSkipsRepeatedMessages(t *testing.T) {
	base := errors.New("refused")
	wrapped := pkgerrors.WithStack(pkgerrors.WithStack(base))
	if got := innerCause(wrapped); got != nil {
		t.Fatalf("expected no inner cause when every layer repeats the message, got %v", got)
	}
}

func TestDisplayNameComposesCharacters(t *testing.T) {
	if got := displayName(" Ope\u0301rations "); got != "Op\u00e9rations" {
		t.Fatalf("expected NFC form, got %q", got)
	}
}
