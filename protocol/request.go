package protocol

import (
	"fmt"
	"strings"

	"github.com/datazip-inc/slicer/dataset"
	"github.com/datazip-inc/slicer/types"
	"github.com/datazip-inc/slicer/utils"
)

// longest operator spelling, in words ("does not contain")
const maxOperatorWords = 3

// loadRequest merges the --request file with --dataset and --where flags. Flag constraints are
// appended after the file's, so evaluation order follows the command line.
func loadRequest(requireDataset bool) (*types.Request, error) {
	request := &types.Request{}
	if requestPath != "" {
		if err := utils.UnmarshalFile(requestPath, request); err != nil {
			return nil, fmt.Errorf("failed to read request: %s", err)
		}
	}

	if datasetSelector != "" {
		request.Dataset = datasetSelector
	}

	for _, clause := range whereClauses {
		input, err := parseWhere(clause)
		if err != nil {
			return nil, err
		}
		request.Constraints = append(request.Constraints, input)
	}

	if requireDataset {
		if err := utils.Validate(request); err != nil {
			return nil, fmt.Errorf("invalid request: %s", err)
		}
		request.Dataset = dataset.Resolve(config.DataDir, request.Dataset)
	}
	return request, nil
}

// parseWhere splits "<field> <operator> <value>". The operator may span several words
// ("does not contain"); the longest known spelling wins. Anything after it is the value,
// inner and trailing whitespace included.
func parseWhere(clause string) (types.ConstraintInput, error) {
	rest := strings.TrimLeft(clause, " \t")
	field, rest := nextWord(rest)
	if field == "" {
		return types.ConstraintInput{}, fmt.Errorf("empty constraint %q", clause)
	}

	words := make([]string, 0, maxOperatorWords)
	remaining := make([]string, 0, maxOperatorWords)
	scan := rest
	for i := 0; i < maxOperatorWords; i++ {
		var word string
		word, scan = nextWord(scan)
		if word == "" {
			break
		}
		words = append(words, word)
		remaining = append(remaining, scan)
	}

	for n := len(words); n > 0; n-- {
		op := types.ParseOperator(strings.Join(words[:n], " "))
		if op.Valid() {
			return types.ConstraintInput{
				Field:    field,
				Operator: string(op),
				Value:    strings.TrimLeft(remaining[n-1], " \t"),
			}, nil
		}
	}

	// unknown operator: keep it so validation reports the mismatch against the field type
	if len(words) == 0 {
		return types.ConstraintInput{}, fmt.Errorf("constraint %q has no operator", clause)
	}
	return types.ConstraintInput{
		Field:    field,
		Operator: words[0],
		Value:    strings.TrimLeft(remaining[0], " \t"),
	}, nil
}

func nextWord(s string) (string, string) {
	s = strings.TrimLeft(s, " \t")
	idx := strings.IndexAny(s, " \t")
	if idx < 0 {
		return s, ""
	}
	return s[:idx], s[idx:]
}
