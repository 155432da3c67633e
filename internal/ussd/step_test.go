package ussd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveStep(t *testing.T) {
	tests := []struct {
		name string
		path string
		want Step
	}{
		{"first contact", "", StepEntryMenu},
		{"register selected", "1", StepRegisterPhonePrompt},
		{"register phone entered", "1*+15551234567", StepRegisterPhone},
		{"register pin entered", "1*+15551234567*1234", StepRegisterPIN},
		{"register path too deep", "1*+15551234567*1234*1", StepInvalid},
		{"login selected", "2", StepLoginPhonePrompt},
		{"login phone entered", "2*+15551234567", StepLoginPhone},
		{"login pin entered", "2*+15551234567*1234", StepLoginPIN},
		{"balance selected", "2*+15551234567*1234*1", StepBalanceCurrencyPrompt},
		{"balance currency entered", "2*+15551234567*1234*1*2", StepBalanceResult},
		{"balance path too deep", "2*+15551234567*1234*1*2*9", StepInvalid},
		{"send selected", "2*+15551234567*1234*2", StepSendCurrencyPrompt},
		{"send currency entered", "2*+15551234567*1234*2*1", StepSendCurrency},
		{"send recipient entered", "2*+15551234567*1234*2*1*+15557654321", StepSendRecipient},
		{"send amount entered", "2*+15551234567*1234*2*1*+15557654321*10", StepSendAmount},
		{"send confirmation entered", "2*+15551234567*1234*2*1*+15557654321*10*1", StepSendConfirm},
		{"send path too deep", "2*+15551234567*1234*2*1*+15557654321*10*1*1", StepInvalid},
		{"exit selected", "2*+15551234567*1234*3", StepExit},
		{"exit path too deep", "2*+15551234567*1234*3*1", StepInvalid},
		{"unknown main menu option", "2*+15551234567*1234*9", StepInvalid},
		{"unknown flow selector", "9", StepInvalid},
		{"garbage flow selector", "abc*def", StepInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStep(SplitPath(tt.path)))
		})
	}
}

// Every token sequence must map to exactly one step; in particular nothing
// may panic and nothing may fall outside the enum.
func TestDeriveStepTotal(t *testing.T) {
	alphabet := []string{"1", "2", "3", "9", "", "+15551234567", "abc"}

	var sequences [][]string
	sequences = append(sequences, nil)
	frontier := [][]string{nil}
	for depth := 0; depth < 5; depth++ {
		var next [][]string
		for _, seq := range frontier {
			for _, tok := range alphabet {
				grown := append(append([]string{}, seq...), tok)
				next = append(next, grown)
			}
		}
		sequences = append(sequences, next...)
		frontier = next
	}

	for _, seq := range sequences {
		step := DeriveStep(seq)
		assert.GreaterOrEqual(t, int(step), int(StepEntryMenu))
		assert.LessOrEqual(t, int(step), int(StepInvalid))
		// Determinism over repeated derivation.
		assert.Equal(t, step, DeriveStep(seq))
	}
}
