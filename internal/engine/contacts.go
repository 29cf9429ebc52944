package engine

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-refill/internal/config"
)

// EncodeContacts writes one vCard per patient due today so the pharmacy can
// import the call/mail list into a phone or address book. A patient with
// several due rounds appears once.
func EncodeContacts(events []ReminderEvent) ([]byte, error) {
	var buf bytes.Buffer
	enc := vcard.NewEncoder(&buf)

	seen := make(map[string]bool, len(events))
	for _, ev := range events {
		key := ev.Record.Name + config.ReminderKeySeparator + ev.Record.ContactAddress
		if seen[key] {
			continue
		}
		seen[key] = true

		if err := enc.Encode(contactCard(ev)); err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrVCardEncode, err)
		}
	}
	return buf.Bytes(), nil
}

// contactCard maps a reminder to a vCard 4.0 entry. Addresses containing "@"
// become EMAIL, anything else is assumed to be a phone number.
func contactCard(ev ReminderEvent) vcard.Card {
	card := make(vcard.Card)
	card.SetValue(vcard.FieldVersion, config.VCardVersion)
	card.SetValue(vcard.FieldFormattedName, ev.Record.Name)
	card.SetValue(vcard.FieldKind, config.VCardKindInd)
	card.SetValue(vcard.FieldUID, ev.ID)

	if addr := ev.Record.ContactAddress; addr != "" {
		if strings.Contains(addr, config.ContactAtSign) {
			card.SetValue(vcard.FieldEmail, addr)
		} else {
			card.SetValue(vcard.FieldTelephone, addr)
		}
	}

	card.SetValue(vcard.FieldNote, fmt.Sprintf(config.FormatContactNote,
		ev.Window.Round,
		ev.Window.Start.Format(config.DateFormatDisplay),
		ev.Window.End.Format(config.DateFormatDisplay)))
	return card
}
