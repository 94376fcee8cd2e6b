package eventsource

import "testing"

func TestSelfTagIsStable(t *testing.T) {
	if SelfTag == 0 {
		t.Fatal("SelfTag must be a non-zero sentinel; zero is a plausible real field value")
	}
	if SelfTag != 0x666C6F776D6F6431 {
		t.Fatal("SelfTag changed value — every running instance and every recorded event must agree on this constant")
	}
}
