package console

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/MrEthical07/phoneverify"
)

func TestSendWritesLine(t *testing.T) {
	var buf bytes.Buffer
	g := New(&buf)

	receipt, err := g.Send(context.Background(), phoneverify.Message{
		To:      "081234567890",
		From:    "PV",
		Body:    "Kode keamanan anda adalah 1234.",
		Channel: phoneverify.ChannelSMS,
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !strings.HasPrefix(receipt.SID, "CN") || len(receipt.SID) != 38 {
		t.Fatalf("unexpected sid %q", receipt.SID)
	}
	if got := buf.String(); got != "[sms] PV -> 081234567890: Kode keamanan anda adalah 1234.\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestSendCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(nil).Send(ctx, phoneverify.Message{}); err == nil {
		t.Fatal("expected canceled context error")
	}
}
