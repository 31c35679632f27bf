package services

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangang/jokecli/internal/models"
	"github.com/huangang/jokecli/pkg/response"
)

const (
	ratingQuestion  = "\nHow would you rate this joke? (1-5, or 's' to skip): "
	commentQuestion = "Any comments? (optional, press Enter to skip): "
	feedbackSkipped = "\nFeedback skipped."
)

// Rating is what the user entered at the prompt.
type Rating struct {
	Value   int
	Comment *string
}

// RatingPrompter asks for a 1-5 rating and an optional comment.
type RatingPrompter struct {
	in  *bufio.Reader
	out io.Writer
	// pending is the read still in flight after a cancelled readLine.
	pending chan lineResult
}

func NewRatingPrompter(in io.Reader, out io.Writer) *RatingPrompter {
	return &RatingPrompter{in: bufio.NewReader(in), out: out}
}

// Ask loops until a valid rating or a skip. ok is false when the user skipped,
// input ended or ctx was cancelled; none of these is an error.
func (p *RatingPrompter) Ask(ctx context.Context) (rating Rating, ok bool) {
	for {
		fmt.Fprint(p.out, ratingQuestion)
		line, err := p.readLine(ctx)
		if err != nil {
			fmt.Fprintln(p.out, feedbackSkipped)
			return Rating{}, false
		}

		input := strings.ToLower(line)
		if input == "s" || input == "skip" {
			return Rating{}, false
		}

		value, convErr := strconv.Atoi(input)
		if convErr != nil || value < models.MinRating || value > models.MaxRating {
			info := DescribeError(&RatingError{Input: input})
			response.Invalid(p.out, info.Message, info.Guidance)
			continue
		}
		rating.Value = value
		break
	}

	fmt.Fprint(p.out, commentQuestion)
	comment, err := p.readLine(ctx)
	if err != nil {
		fmt.Fprintln(p.out, feedbackSkipped)
		return Rating{}, false
	}
	if comment != "" {
		rating.Comment = &comment
	}
	return rating, true
}

type lineResult struct {
	line string
	err  error
}

// readLine returns the next trimmed line. A final line without a newline is
// still returned; io.EOF only comes back once nothing was read. A read
// abandoned by ctx stays pending and its line goes to the next call.
func (p *RatingPrompter) readLine(ctx context.Context) (string, error) {
	if p.pending == nil {
		ch := make(chan lineResult, 1)
		go func() {
			line, err := p.in.ReadString('\n')
			if err == io.EOF && line != "" {
				err = nil
			}
			ch <- lineResult{line: strings.TrimSpace(line), err: err}
		}()
		p.pending = ch
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-p.pending:
		p.pending = nil
		return r.line, r.err
	}
}
