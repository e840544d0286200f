/*
normalize.go - Transaction validation and kind normalization

PURPOSE:
  Validates a batch of transactions before the fold runs. Upstream decoders
  (report.ReadTransactions, the API layer) already produce typed records,
  but the engine re-validates defensively: it never trusts that the four
  fields are present and the kind is recognized.

FAIL-FAST:
  Validation is all-or-nothing. One bad record anywhere in the batch fails
  the whole batch before any ledger state is built; there is no partial
  processing and no silent coercion.

SEE ALSO:
  - engine.go: Calls Normalize before folding
  - errors.go: SchemaError, InvalidKindError
*/
package fund

import "strings"

// NormalizeKind canonicalizes a raw kind value: surrounding whitespace is
// trimmed and case is ignored, so " Subscription " and "REDEMPTION" are
// accepted. Anything else is an error.
func NormalizeKind(raw string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindSubscription:
		return KindSubscription, nil
	case KindRedemption:
		return KindRedemption, nil
	default:
		return "", &InvalidKindError{Kind: raw}
	}
}

// Normalize validates every transaction in the batch and returns a copy
// with canonical kinds. The input slice is never mutated.
//
// Checks per transaction:
//   - date, investor and amount fields are present (SchemaError)
//   - amount is strictly positive (SchemaError: it is a currency value to
//     convert, and a non-positive value cannot price into units)
//   - kind normalizes to subscription or redemption (InvalidKindError)
func Normalize(transactions []Transaction) ([]Transaction, error) {
	out := make([]Transaction, len(transactions))
	for i, tx := range transactions {
		var missing []string
		if tx.Date.IsZero() {
			missing = append(missing, "date")
		}
		if strings.TrimSpace(tx.Investor) == "" {
			missing = append(missing, "investor")
		}
		if tx.Amount.Sign() <= 0 {
			missing = append(missing, "amount")
		}
		if len(missing) > 0 {
			return nil, &SchemaError{Source: "transactions", Missing: missing}
		}

		kind, err := NormalizeKind(string(tx.Kind))
		if err != nil {
			return nil, &InvalidKindError{Kind: string(tx.Kind), Investor: tx.Investor, Date: tx.Date}
		}

		out[i] = tx
		out[i].Kind = kind
	}
	return out, nil
}
