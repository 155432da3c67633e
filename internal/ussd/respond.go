package ussd

// The two response prefixes are a byte-level wire contract with the session
// gateway: CON keeps the session open, END closes it.
const (
	ContinuePrefix = "CON "
	EndPrefix      = "END "
)

// Reply is the machine's outcome for one request.
type Reply struct {
	End  bool
	Text string
}

func Continue(text string) Reply {
	return Reply{Text: text}
}

func End(text string) Reply {
	return Reply{End: true, Text: text}
}

// Render formats a reply for the wire.
func Render(r Reply) string {
	if r.End {
		return EndPrefix + r.Text
	}
	return ContinuePrefix + r.Text
}
