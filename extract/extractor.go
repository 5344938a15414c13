package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/assessortools/covmap/llm"
	"github.com/assessortools/covmap/metrics"
)

// Extractor converts raw document text into an ordered sequence of
// hierarchical Question records. Extraction never fails: structured
// extraction degrades to pattern matching, then to heuristic scanning,
// and unparseable input yields an empty sequence.
type Extractor struct {
	completer llm.Completer
	planner   *ChunkPlanner
	params    llm.GenerationParams
	logger    *slog.Logger
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithCompleter sets the extraction service client. Nil skips structured
// extraction and goes straight to pattern matching.
func WithCompleter(c llm.Completer) ExtractorOption {
	return func(e *Extractor) {
		e.completer = c
	}
}

// WithChunkPlanner sets a custom chunk planner.
func WithChunkPlanner(p *ChunkPlanner) ExtractorOption {
	return func(e *Extractor) {
		e.planner = p
	}
}

// WithGenerationParams sets the sampling controls for structured extraction.
func WithGenerationParams(p llm.GenerationParams) ExtractorOption {
	return func(e *Extractor) {
		e.params = p
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ExtractorOption {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// NewExtractor creates an extractor. Without options it runs pattern-only
// extraction with default chunking.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		planner: NewDefaultChunkPlanner(),
		params:  llm.DefaultGenerationParams(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract produces the ordered question sequence for a document. Oversized
// documents are chunked; each chunk degrades independently, so one bad
// chunk never aborts the whole document.
func (e *Extractor) Extract(ctx context.Context, text string) []Question {
	chunks := e.planner.Plan(text)

	var questions []Question
	lineOffset := 0
	for i, chunk := range chunks {
		chunkQuestions := e.extractChunk(ctx, chunk)
		for j := range chunkQuestions {
			chunkQuestions[j].Line += lineOffset
		}
		questions = append(questions, chunkQuestions...)

		e.logger.Debug("Chunk extracted",
			"chunk", i+1,
			"chunks", len(chunks),
			"questions", len(chunkQuestions))

		lineOffset += strings.Count(chunk, "\n")
	}

	for i := range questions {
		applyDefaults(&questions[i], i)
	}

	questions = resolveParents(questions)
	assignIDs(questions)

	for i := range questions {
		metrics.QuestionsExtracted.WithLabelValues(string(questions[i].Type)).Inc()
	}

	return questions
}

// extractChunk runs the degradation ladder for a single chunk.
func (e *Extractor) extractChunk(ctx context.Context, chunk string) []Question {
	if e.completer != nil {
		questions, err := e.structuredExtract(ctx, chunk)
		if err == nil && len(questions) > 0 {
			return questions
		}
		if err != nil {
			e.logger.Warn("Structured extraction failed, falling back to patterns", "error", err)
		}
		metrics.ExtractionFallbacks.Inc()
	}

	questions := e.patternExtract(chunk)
	if len(questions) == 0 {
		questions = e.heuristicExtract(chunk)
	}
	return questions
}

// structuredExtract asks the extraction service for the chunk's questions.
func (e *Extractor) structuredExtract(ctx context.Context, chunk string) ([]Question, error) {
	resp, err := e.completer.Complete(ctx, llm.Request{
		Prompt: buildExtractionPrompt(chunk),
		Params: e.params,
	})
	if err != nil {
		return nil, fmt.Errorf("extraction call: %w", err)
	}

	var reply extractionReply
	if err := llm.DecodeObject(resp.Content, &reply); err != nil {
		return nil, fmt.Errorf("extraction reply: %w", err)
	}

	questions := make([]Question, 0, len(reply.Questions))
	for _, rq := range reply.Questions {
		text := strings.TrimSpace(rq.Text)
		if text == "" {
			continue
		}

		q := Question{
			Text:       text,
			Number:     strings.TrimSpace(rq.Number),
			Type:       QuestionType(rq.Type),
			Choices:    rq.Choices,
			Confidence: ConfidenceHigh,
			Line:       locateLine(chunk, text),
		}
		if rq.Confidence != "" {
			q.Confidence = Confidence(rq.Confidence)
		}
		questions = append(questions, q)
	}

	return questions, nil
}

// patternExtract walks the chunk line by line. Main headings and dotted
// sub-questions carry the numbering hierarchy; unmatched lines extend the
// question being captured. The generic fallback patterns are a separate
// pass, used only when no numbered structure exists at all, so that
// choice lines ("A. option") are captured as question text rather than
// recognized as questions themselves.
func (e *Extractor) patternExtract(chunk string) []Question {
	questions := e.structureWalk(chunk)
	if len(questions) == 0 {
		questions = e.genericWalk(chunk)
	}

	for i := range questions {
		q := &questions[i]
		if q.Type == "" {
			q.Type = Classify(q.Text)
		}
		if q.Type == TypeMCQ && len(q.Choices) == 0 {
			q.Choices = extractChoices(q.Text)
		}
	}
	return questions
}

// structureWalk recognizes "N." headings and "N.M" sub-questions.
func (e *Extractor) structureWalk(chunk string) []Question {
	var questions []Question
	openMains := make(map[string]bool)
	current := -1

	for i, line := range strings.Split(chunk, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if m := subQuestionPattern.FindStringSubmatch(trimmed); m != nil {
			parentNumber := m[1]
			if !openMains[parentNumber] {
				questions = append(questions, placeholderMain(parentNumber, i+1))
				openMains[parentNumber] = true
			}
			questions = append(questions, Question{
				Text:       m[3],
				Number:     m[1] + "." + m[2],
				Confidence: ConfidenceMedium,
				Line:       i + 1,
			})
			current = len(questions) - 1
			continue
		}

		if m := mainHeadingPattern.FindStringSubmatch(trimmed); m != nil {
			questions = append(questions, Question{
				Text:       m[2],
				Number:     m[1],
				Confidence: ConfidenceMedium,
				Line:       i + 1,
			})
			openMains[m[1]] = true
			current = len(questions) - 1
			continue
		}

		if current >= 0 {
			questions[current].Text += "\n" + trimmed
		}
	}

	return questions
}

// genericWalk applies the ordered fallback recognizers.
func (e *Extractor) genericWalk(chunk string) []Question {
	var questions []Question
	current := -1

	for i, line := range strings.Split(chunk, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		matched := false
		for _, gp := range genericPatterns {
			m := gp.re.FindStringSubmatch(trimmed)
			if m == nil {
				continue
			}

			q := Question{
				Text:       m[gp.textGroup],
				Confidence: ConfidenceMedium,
				Line:       i + 1,
			}
			if gp.numberGroup > 0 {
				q.Number = m[gp.numberGroup]
			}
			questions = append(questions, q)
			current = len(questions) - 1
			matched = true
			break
		}

		if !matched && current >= 0 {
			questions[current].Text += "\n" + trimmed
		}
	}

	return questions
}

// heuristicExtract is the last resort: lines ending in "?" or carrying an
// interrogative word become low-confidence questions.
func (e *Extractor) heuristicExtract(chunk string) []Question {
	var questions []Question
	for i, line := range strings.Split(chunk, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasSuffix(trimmed, "?") || interrogativePattern.MatchString(trimmed) {
			questions = append(questions, Question{
				Text:       trimmed,
				Type:       Classify(trimmed),
				Confidence: ConfidenceLow,
				Line:       i + 1,
			})
		}
	}
	return questions
}

// placeholderMain synthesizes a main question for an orphaned sub-question.
func placeholderMain(number string, line int) Question {
	return Question{
		Text:       fmt.Sprintf("Question %s", number),
		Number:     number,
		Type:       TypeUnknown,
		Confidence: ConfidenceLow,
		Line:       line,
	}
}

// applyDefaults guarantees every emitted question carries text, number,
// type, and confidence.
func applyDefaults(q *Question, index int) {
	q.Text = strings.TrimSpace(q.Text)
	if q.Number == "" {
		q.Number = strconv.Itoa(index + 1)
	}
	if q.Type == "" {
		q.Type = Classify(q.Text)
	}
	switch q.Confidence {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
	default:
		q.Confidence = ConfidenceMedium
	}
}

// resolveParents guarantees every sub-question has a main question in the
// same result set, synthesizing placeholders where the source never
// opened one. Placeholders are inserted before their first child.
func resolveParents(questions []Question) []Question {
	mains := make(map[string]bool)
	for i := range questions {
		if !questions[i].IsSub() {
			mains[questions[i].Number] = true
		}
	}

	var result []Question
	for _, q := range questions {
		if parent := q.ParentNumber(); parent != "" && !mains[parent] {
			result = append(result, placeholderMain(parent, q.Line))
			mains[parent] = true
		}
		result = append(result, q)
	}
	return result
}

// assignIDs gives every question a document-unique ID and links
// sub-questions to their parents.
func assignIDs(questions []Question) {
	idByNumber := make(map[string]string)
	for i := range questions {
		questions[i].ID = fmt.Sprintf("Q%d", i+1)
		if !questions[i].IsSub() {
			if _, seen := idByNumber[questions[i].Number]; !seen {
				idByNumber[questions[i].Number] = questions[i].ID
			}
		}
	}
	for i := range questions {
		if parent := questions[i].ParentNumber(); parent != "" {
			questions[i].ParentID = idByNumber[parent]
		}
	}
}

// locateLine finds the 1-based line where text begins in the chunk,
// matching on the first line of the text. Returns 1 when not found.
func locateLine(chunk, text string) int {
	firstLine := text
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		firstLine = text[:idx]
	}
	firstLine = strings.TrimSpace(firstLine)
	if firstLine == "" {
		return 1
	}

	for i, line := range strings.Split(chunk, "\n") {
		if strings.Contains(line, firstLine) {
			return i + 1
		}
	}
	return 1
}
