package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/passvault/passvault-server/internal/crypto"
)

var (
	genLength         int
	genNoLowercase    bool
	genNoUppercase    bool
	genNoDigits       bool
	genNoSymbols      bool
	genExcludeSimilar bool
)

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate a random password",
	RunE: func(_ *cobra.Command, _ []string) error {
		opts := crypto.GeneratorOptions{
			Length:           genLength,
			IncludeLowercase: !genNoLowercase,
			IncludeUppercase: !genNoUppercase,
			IncludeDigits:    !genNoDigits,
			IncludeSymbols:   !genNoSymbols,
			ExcludeSimilar:   genExcludeSimilar,
		}

		password, err := crypto.Generate(opts)
		if err != nil {
			return err
		}

		score, _ := crypto.ScoreStrength(password)
		fmt.Println(password)
		fmt.Printf("Strength: %d/5\n", score)
		return nil
	},
}

func init() {
	genCmd.Flags().IntVar(&genLength, "length", 16, "password length")
	genCmd.Flags().BoolVar(&genNoLowercase, "no-lowercase", false, "exclude lowercase letters")
	genCmd.Flags().BoolVar(&genNoUppercase, "no-uppercase", false, "exclude uppercase letters")
	genCmd.Flags().BoolVar(&genNoDigits, "no-digits", false, "exclude digits")
	genCmd.Flags().BoolVar(&genNoSymbols, "no-symbols", false, "exclude symbols")
	genCmd.Flags().BoolVar(&genExcludeSimilar, "exclude-similar", false, "exclude easily confused characters (il1Lo0O)")

	rootCmd.AddCommand(genCmd)
}
