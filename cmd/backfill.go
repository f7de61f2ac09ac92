package cmd

import (
	"context"
	"fmt"
)

// BackfillISBNCmd derives missing ISBN columns from the stored ones
type BackfillISBNCmd struct {
	ISBN10 bool `name:"isbn10" help:"Copy valid ISBN-10 values of isbn into an empty isbn_10"`
	ISBN13 bool `name:"isbn13" help:"Compute isbn_13 from isbn_10"`
}

func (b *BackfillISBNCmd) Run() error {
	store, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	// Without flags both columns are filled, isbn_10 first so that isbn_13
	// can be computed from it.
	both := !b.ISBN10 && !b.ISBN13
	ctx := context.Background()

	if b.ISBN10 || both {
		n, err := store.BackfillISBN10(ctx)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(stdout, "isbn_10: %d rows updated\n", n)
	}
	if b.ISBN13 || both {
		n, err := store.BackfillISBN13(ctx)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(stdout, "isbn_13: %d rows updated\n", n)
	}
	return nil
}
