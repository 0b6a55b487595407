package main

import "testing"

func TestResumeTokenRoundTrip(t *testing.T) {
	rejoin := NewRejoin("secret")
	token := rejoin.GenerateResumeToken("snake", "1234", 3)
	if token == "" {
		t.Fatal("empty token")
	}

	gameID, roomCode, playerID, ok := rejoin.ParseResumeToken(token)
	if !ok {
		t.Fatal("token did not parse")
	}
	if gameID != "snake" || roomCode != "1234" || playerID != 3 {
		t.Errorf("wrong claims: %v %v %v", gameID, roomCode, playerID)
	}
}

func TestResumeTokenRejectsWrongSecret(t *testing.T) {
	token := NewRejoin("secret").GenerateResumeToken("maze", "4821", 2)
	if _, _, _, ok := NewRejoin("other").ParseResumeToken(token); ok {
		t.Error("token signed with another secret must be rejected")
	}
}

func TestResumeTokenRejectsGarbage(t *testing.T) {
	rejoin := NewRejoin("secret")
	for _, bad := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, _, _, ok := rejoin.ParseResumeToken(bad); ok {
			t.Errorf("accepted %q", bad)
		}
	}
}
