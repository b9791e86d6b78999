package mqtt

import (
	"bytes"
	"errors"
	"testing"
)

// Validation failures must surface before any broker interaction, so they
// are testable on a zero client.

func TestPublishRejectsEmptyTopic(t *testing.T) {
	c := &Client{}
	if err := c.Publish("", []byte("{}"), 1, false); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("got %v, want ErrInvalidTopic", err)
	}
}

func TestPublishRejectsInvalidQoS(t *testing.T) {
	c := &Client{}
	if err := c.Publish("chassisd/event/g/e", []byte("{}"), 3, false); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("got %v, want ErrInvalidQoS", err)
	}
}

func TestPublishRejectsOversizedPayload(t *testing.T) {
	c := &Client{}
	payload := bytes.Repeat([]byte("x"), maxPayloadSize+1)
	if err := c.Publish("chassisd/event/g/e", payload, 1, false); !errors.Is(err, ErrPublishFailed) {
		t.Errorf("got %v, want ErrPublishFailed", err)
	}
}

func TestPublishRequiresConnection(t *testing.T) {
	c := &Client{}
	if err := c.Publish("chassisd/event/g/e", []byte("{}"), 1, false); !errors.Is(err, ErrNotConnected) {
		t.Errorf("got %v, want ErrNotConnected", err)
	}
}

func TestCloseOnZeroClient(t *testing.T) {
	c := &Client{}
	if err := c.Close(); err != nil {
		t.Errorf("Close on never-connected client: %v", err)
	}
}
