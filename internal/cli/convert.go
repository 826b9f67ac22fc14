package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mind-engage/mindengage-norms/internal/scoring"
	"github.com/mind-engage/mindengage-norms/internal/subtests"
)

func (a *app) convertCmd() *cobra.Command {
	var (
		ageMonths int
		dob       string
		testDate  string
		scores    []string
	)
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert subtest scores to index composites",
		Long: `Convert sums the given subtest standard scores per index, picks the
normative bands for the examinee's age and prints the composites, the
overall score, percentiles and confidence intervals.

Age comes from --age-months, or from --dob and --test-date
(yyyy-mm-dd or dd-mm-yyyy). Without either the all-ages tables are used.`,
		Example: `  normsctl convert --age-months 100 --score SIM=10 --score VOC=12
  normsctl convert --dob 2014-01-15 --test-date 2022-06-01 --score SIM=10 --overall both`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseScores(scores)
			if err != nil {
				return err
			}
			conv, both, err := scoring.ParseOverall(a.v.GetString("overall"))
			if err != nil {
				return err
			}
			req := scoring.Request{
				DOB:        dob,
				TestDate:   testDate,
				Scores:     parsed,
				Convention: conv,
				Both:       both,
			}
			if cmd.Flags().Changed("age-months") {
				req.AgeMonths = &ageMonths
			}

			store, _, err := a.loadTables(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), scoring.NewService(store).Score(req))
		},
	}
	cmd.Flags().IntVar(&ageMonths, "age-months", 0, "Age in whole months")
	cmd.Flags().StringVar(&dob, "dob", "", "Date of birth")
	cmd.Flags().StringVar(&testDate, "test-date", "", "Test date")
	cmd.Flags().StringArrayVarP(&scores, "score", "s", nil, "Subtest standard score as KEY=VALUE (repeatable)")
	return cmd
}

// parseScores reads KEY=VALUE pairs. Keys are case-insensitive; unknown
// keys and scores outside 1..19 are rejected.
func parseScores(pairs []string) (subtests.Scores, error) {
	out := subtests.Scores{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("score %q: want KEY=VALUE", p)
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("score %q: %w", p, err)
		}
		out[strings.ToUpper(strings.TrimSpace(k))] = n
	}
	if errs := out.Validate(); len(errs) > 0 {
		return nil, errs[0]
	}
	return out, nil
}
