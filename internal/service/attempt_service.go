package service

import (
	"context"
	"edu_assessment_backend/internal/events"
	"edu_assessment_backend/internal/grading"
	"edu_assessment_backend/internal/model"
	"edu_assessment_backend/internal/util"
	"edu_assessment_backend/pkg/monitoring"
	"encoding/json"
	"time"
)

// Storage access for the attempt lifecycle. The engine reaches storage only
// through these interfaces; the GORM repositories satisfy them in production
// and tests substitute in-memory fakes.
type AttemptStore interface {
	CreateWithinLimit(attempt *model.AssessmentAttempt, maxAttempts int) error
	FindByID(id string) (*model.AssessmentAttempt, error)
	Update(attempt *model.AssessmentAttempt) error
	ListForUser(assessmentID string, userID uint) ([]model.AssessmentAttempt, error)
	UpsertAnswer(ans *model.AttemptAnswer) error
	ListAnswers(attemptID string) ([]model.AttemptAnswer, error)
	UpdateAnswer(ans *model.AttemptAnswer) error
	ListPendingManual(assessmentID string) ([]model.AssessmentAttempt, error)
	ListExpiredInProgress(now time.Time) ([]model.AssessmentAttempt, error)
}

type AssessmentStore interface {
	FindByID(id string) (*model.Assessment, error)
	ListQuestions(assessmentID string) ([]model.AssessmentQuestion, error)
}

type BankStore interface {
	FindByIDs(ids []string) ([]model.QuestionBankItem, error)
}

// MasterySink receives the outcome of a fully graded attempt.
type MasterySink interface {
	RecordGradedAttempt(ctx context.Context, userID uint, attempt *model.AssessmentAttempt, outcomes []AnswerOutcome) error
}

// AnswerOutcome is one graded answer reduced to what mastery tracking needs.
type AnswerOutcome struct {
	TopicID   string
	SubjectID string
	IsCorrect bool
	Score     int
	MaxScore  int
}

// AttemptStateMachine governs one user's attempt at one assessment:
// in_progress → {submitted, timed_out}, submitted → graded, graded →
// reviewed. No transition re-enters in_progress.
type AttemptStateMachine struct {
	Attempts    AttemptStore
	Assessments AssessmentStore
	Bank        BankStore
	Renderer    *QuestionRenderer
	Mastery     MasterySink
	Emitter     events.Emitter
	now         func() time.Time
}

func NewAttemptStateMachine(attempts AttemptStore, assessments AssessmentStore, bank BankStore, renderer *QuestionRenderer, mastery MasterySink, emitter events.Emitter) *AttemptStateMachine {
	return &AttemptStateMachine{
		Attempts:    attempts,
		Assessments: assessments,
		Bank:        bank,
		Renderer:    renderer,
		Mastery:     mastery,
		Emitter:     emitter,
		now:         time.Now,
	}
}

// Start creates an in_progress attempt against a published, in-window
// assessment, as long as the user's attempt count is below maxAttempts. The
// count-then-insert runs inside one store transaction (§ concurrency: two
// racing starts must not both pass the check).
func (s *AttemptStateMachine) Start(assessmentID string, userID uint) (*model.AssessmentAttempt, error) {
	a, err := s.Assessments.FindByID(assessmentID)
	if err != nil {
		return nil, err
	}
	if a.Status != model.AssessmentPublished {
		return nil, util.ErrNotPublished
	}
	now := s.now()
	if !a.AvailableAt(now) {
		return nil, util.ErrOutOfWindow
	}

	attempt := &model.AssessmentAttempt{
		AssessmentID: assessmentID,
		UserID:       userID,
		Status:       model.AttemptInProgress,
		StartedAt:    now,
	}
	if err := s.Attempts.CreateWithinLimit(attempt, a.MaxAttempts); err != nil {
		return nil, err
	}

	monitoring.AttemptsStarted.Inc()
	return attempt, nil
}

// AnswerResult echoes the graded state of a single answer write, for live
// progress display. Attempt-level totals are authoritative only after submit.
type AnswerResult struct {
	QuestionID string `json:"questionId"`
	IsCorrect  *bool  `json:"isCorrect,omitempty"`
	Score      *int   `json:"score,omitempty"`
	MaxScore   int    `json:"maxScore"`
}

// Answer validates the payload shape against the question type, then upserts
// the row for (attemptId, assessmentQuestionId): insert-or-replace, never a
// duplicate. Auto-gradable types are scored eagerly on every write.
func (s *AttemptStateMachine) Answer(attemptID string, userID uint, assessmentQuestionID string, rawAnswer json.RawMessage, timeTakenSeconds int) (*AnswerResult, error) {
	attempt, err := s.Attempts.FindByID(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	if attempt.Closed() {
		return nil, util.ErrAttemptClosed
	}

	aq, item, err := s.resolveQuestion(attempt.AssessmentID, assessmentQuestionID)
	if err != nil {
		return nil, err
	}

	ans, err := grading.ParseAnswer(rawAnswer)
	if err != nil {
		return nil, err
	}
	if err := grading.ValidateShape(item.QuestionType, ans); err != nil {
		return nil, err
	}

	// Re-marshal so the stored payload is the normalized union shape.
	stored, err := json.Marshal(ans)
	if err != nil {
		return nil, err
	}

	row := &model.AttemptAnswer{
		AttemptID:            attemptID,
		AssessmentQuestionID: assessmentQuestionID,
		Answer:               stored,
		MaxScore:             aq.EffectivePoints(item),
		TimeTakenSeconds:     timeTakenSeconds,
	}

	if grading.IsAutoGradable(item.QuestionType) {
		view, err := s.questionView(aq, item)
		if err != nil {
			return nil, err
		}
		result := grading.Grade(view, ans)
		row.IsCorrect = result.IsCorrect
		row.Score = result.Score
	}

	if err := s.Attempts.UpsertAnswer(row); err != nil {
		return nil, err
	}

	return &AnswerResult{
		QuestionID: item.ID,
		IsCorrect:  row.IsCorrect,
		Score:      row.Score,
		MaxScore:   row.MaxScore,
	}, nil
}

// Submit grades every ungraded auto-gradable answer, finalizes totals and
// moves the attempt to graded, or to submitted while constructed-response
// answers await a marker.
func (s *AttemptStateMachine) Submit(ctx context.Context, attemptID string, userID uint) (*model.AssessmentAttempt, error) {
	attempt, err := s.Attempts.FindByID(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	if attempt.Closed() {
		return nil, util.ErrAttemptClosed
	}

	now := s.now()
	if err := s.closeAndScore(ctx, attempt, now, false); err != nil {
		return nil, err
	}
	monitoring.AttemptsSubmitted.Inc()
	return attempt, nil
}

// Timeout is driven by the scheduler collaborator once the time limit has
// elapsed without a submit. Scoring proceeds exactly as submit against
// whatever answers exist, but the terminal status stays timed_out.
func (s *AttemptStateMachine) Timeout(ctx context.Context, attemptID string) (*model.AssessmentAttempt, error) {
	attempt, err := s.Attempts.FindByID(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.Closed() {
		return nil, util.ErrAttemptClosed
	}

	if err := s.closeAndScore(ctx, attempt, s.now(), true); err != nil {
		return nil, err
	}
	monitoring.AttemptsTimedOut.Inc()
	return attempt, nil
}

// TimeoutExpired reaps every in-progress attempt whose time limit has
// elapsed. Called periodically from the app's background loop.
func (s *AttemptStateMachine) TimeoutExpired(ctx context.Context) (int, error) {
	expired, err := s.Attempts.ListExpiredInProgress(s.now())
	if err != nil {
		return 0, err
	}
	reaped := 0
	for _, attempt := range expired {
		if _, err := s.Timeout(ctx, attempt.ID); err != nil {
			continue
		}
		reaped++
	}
	return reaped, nil
}

func (s *AttemptStateMachine) closeAndScore(ctx context.Context, attempt *model.AssessmentAttempt, now time.Time, timedOut bool) error {
	answers, err := s.Attempts.ListAnswers(attempt.ID)
	if err != nil {
		return err
	}
	aqMap, itemMap, err := s.questionContext(attempt.AssessmentID)
	if err != nil {
		return err
	}

	// Grade anything auto-gradable that is still unscored; answer writes
	// normally do this eagerly, so this is the catch-up pass.
	results := make([]grading.Result, 0, len(answers))
	for i := range answers {
		row := &answers[i]
		if row.Score == nil {
			aq, okAQ := aqMap[row.AssessmentQuestionID]
			item, okItem := itemMap[aq.QuestionID]
			if okAQ && okItem && grading.IsAutoGradable(item.QuestionType) {
				if ans, err := grading.ParseAnswer(row.Answer); err == nil {
					if view, err := s.questionView(&aq, &item); err == nil {
						result := grading.Grade(view, ans)
						row.IsCorrect = result.IsCorrect
						row.Score = result.Score
						if err := s.Attempts.UpdateAnswer(row); err != nil {
							return err
						}
					}
				}
			}
		}
		results = append(results, grading.Result{IsCorrect: row.IsCorrect, Score: row.Score, MaxScore: row.MaxScore})
	}

	totals := grading.Finalize(results)
	attempt.TotalScore = totals.TotalScore
	attempt.MaxScore = totals.MaxScore
	attempt.Percentage = totals.Percentage
	attempt.SubmittedAt = &now
	attempt.TimeSpentSeconds = int(now.Sub(attempt.StartedAt).Seconds())

	switch {
	case timedOut:
		attempt.Status = model.AttemptTimedOut
	case totals.AllGraded:
		attempt.Status = model.AttemptGraded
		attempt.GradedAt = &now
	default:
		attempt.Status = model.AttemptSubmitted
	}

	if err := s.Attempts.Update(attempt); err != nil {
		return err
	}

	if totals.AllGraded {
		s.propagateGraded(ctx, attempt, answers, aqMap, itemMap)
	}
	return nil
}

// ManualScoreRequest records a marker's score for one constructed-response
// answer.
type ManualScoreRequest struct {
	AssessmentQuestionID string `json:"assessmentQuestionId" binding:"required"`
	Score                int    `json:"score"`
	Comment              string `json:"comment"`
}

// ManualGrade stores marker scores for submitted attempts; the attempt
// reaches graded only once no answer is left unscored.
func (s *AttemptStateMachine) ManualGrade(ctx context.Context, attemptID string, graderID uint, scores []ManualScoreRequest, feedback string) (*model.AssessmentAttempt, error) {
	attempt, err := s.Attempts.FindByID(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.Status != model.AttemptSubmitted && attempt.Status != model.AttemptTimedOut {
		return nil, util.ErrAttemptClosed
	}

	answers, err := s.Attempts.ListAnswers(attempt.ID)
	if err != nil {
		return nil, err
	}
	byQuestion := make(map[string]*model.AttemptAnswer, len(answers))
	wasFullyGraded := true
	for i := range answers {
		byQuestion[answers[i].AssessmentQuestionID] = &answers[i]
		if answers[i].Score == nil {
			wasFullyGraded = false
		}
	}

	now := s.now()
	for _, sc := range scores {
		row, ok := byQuestion[sc.AssessmentQuestionID]
		if !ok {
			return nil, util.ErrQuestionNotFound
		}
		score := sc.Score
		if score < 0 {
			score = 0
		}
		if score > row.MaxScore {
			score = row.MaxScore
		}
		correct := score == row.MaxScore
		row.Score = &score
		row.IsCorrect = &correct
		row.MarkerComment = sc.Comment
		row.GradedBy = &graderID
		row.GradedAt = &now
		if err := s.Attempts.UpdateAnswer(row); err != nil {
			return nil, err
		}
	}

	results := make([]grading.Result, len(answers))
	for i, row := range answers {
		results[i] = grading.Result{IsCorrect: row.IsCorrect, Score: row.Score, MaxScore: row.MaxScore}
	}
	totals := grading.Finalize(results)
	attempt.TotalScore = totals.TotalScore
	attempt.MaxScore = totals.MaxScore
	attempt.Percentage = totals.Percentage
	if feedback != "" {
		attempt.Feedback = feedback
	}

	if totals.AllGraded && attempt.Status == model.AttemptSubmitted {
		attempt.Status = model.AttemptGraded
		attempt.GradedBy = &graderID
		attempt.GradedAt = &now
	}
	if err := s.Attempts.Update(attempt); err != nil {
		return nil, err
	}

	// Skip propagation when the attempt was already fully graded, otherwise
	// re-grading a timed-out attempt would fold into mastery twice.
	if totals.AllGraded && !wasFullyGraded {
		aqMap, itemMap, err := s.questionContext(attempt.AssessmentID)
		if err == nil {
			s.propagateGraded(ctx, attempt, answers, aqMap, itemMap)
		}
	}
	return attempt, nil
}

func (s *AttemptStateMachine) ListPendingManual(assessmentID string) ([]model.AssessmentAttempt, error) {
	return s.Attempts.ListPendingManual(assessmentID)
}

// AttemptProgress is the taker's live view: questions rendered with answers
// hidden, own answers echoed back and the remaining seconds on the clock.
type AttemptProgress struct {
	Attempt          *model.AssessmentAttempt `json:"attempt"`
	Questions        []RenderedQuestion       `json:"questions"`
	Answers          []model.AttemptAnswer    `json:"answers"`
	RemainingSeconds int                      `json:"remainingSeconds"`
}

func (s *AttemptStateMachine) GetProgress(attemptID string, userID uint, role model.UserRole) (*AttemptProgress, error) {
	attempt, err := s.Attempts.FindByID(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID && !privileged(role) {
		return nil, util.ErrPermissionDenied
	}

	a, err := s.Assessments.FindByID(attempt.AssessmentID)
	if err != nil {
		return nil, err
	}
	aqs, err := s.Assessments.ListQuestions(attempt.AssessmentID)
	if err != nil {
		return nil, err
	}
	itemMap, err := s.itemsFor(aqs)
	if err != nil {
		return nil, err
	}

	questions := make([]RenderedQuestion, 0, len(aqs))
	for i := range aqs {
		item, ok := itemMap[aqs[i].QuestionID]
		if !ok {
			continue
		}
		rq, err := s.Renderer.ForAttempt(&item, &aqs[i], RenderOptions{
			ShuffleOptions: a.ShuffleOptions,
			ShowPoints:     true,
		})
		if err != nil {
			return nil, err
		}
		questions = append(questions, *rq)
	}

	answers, err := s.Attempts.ListAnswers(attemptID)
	if err != nil {
		return nil, err
	}

	remaining := 0
	if attempt.Status == model.AttemptInProgress && a.TimeLimitMinutes > 0 {
		remaining = a.TimeLimitMinutes*60 - int(s.now().Sub(attempt.StartedAt).Seconds())
		if remaining < 0 {
			remaining = 0
		}
	}

	return &AttemptProgress{
		Attempt:          attempt,
		Questions:        questions,
		Answers:          answers,
		RemainingSeconds: remaining,
	}, nil
}

// AttemptReview is the read-side projection with answers and correctness
// revealed.
type AttemptReview struct {
	Attempt   *model.AssessmentAttempt `json:"attempt"`
	Questions []RenderedQuestion       `json:"questions"`
}

// Review is allowed for the attempt owner or a privileged role, on finished
// attempts only. A graded attempt moves to reviewed; the transition is
// read-side, nothing else changes.
func (s *AttemptStateMachine) Review(attemptID string, requesterID uint, requesterRole model.UserRole) (*AttemptReview, error) {
	attempt, err := s.Attempts.FindByID(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != requesterID && !privileged(requesterRole) {
		return nil, util.ErrPermissionDenied
	}
	if attempt.Status == model.AttemptInProgress {
		return nil, util.ErrAttemptNotFinished
	}

	aqs, err := s.Assessments.ListQuestions(attempt.AssessmentID)
	if err != nil {
		return nil, err
	}
	itemMap, err := s.itemsFor(aqs)
	if err != nil {
		return nil, err
	}
	answers, err := s.Attempts.ListAnswers(attemptID)
	if err != nil {
		return nil, err
	}
	answerByQuestion := make(map[string]*model.AttemptAnswer, len(answers))
	for i := range answers {
		answerByQuestion[answers[i].AssessmentQuestionID] = &answers[i]
	}
	questions := make([]RenderedQuestion, 0, len(aqs))
	for i := range aqs {
		item, ok := itemMap[aqs[i].QuestionID]
		if !ok {
			continue
		}
		rq, err := s.Renderer.ForReview(&item, &aqs[i], answerByQuestion[aqs[i].ID])
		if err != nil {
			return nil, err
		}
		questions = append(questions, *rq)
	}

	if attempt.Status == model.AttemptGraded {
		attempt.Status = model.AttemptReviewed
		if err := s.Attempts.Update(attempt); err != nil {
			return nil, err
		}
	}
	return &AttemptReview{Attempt: attempt, Questions: questions}, nil
}

func (s *AttemptStateMachine) ListForUser(assessmentID string, userID uint) ([]model.AssessmentAttempt, error) {
	return s.Attempts.ListForUser(assessmentID, userID)
}

func privileged(role model.UserRole) bool {
	return role == model.Teacher || role == model.Admin
}

func (s *AttemptStateMachine) resolveQuestion(assessmentID, assessmentQuestionID string) (*model.AssessmentQuestion, *model.QuestionBankItem, error) {
	aqs, err := s.Assessments.ListQuestions(assessmentID)
	if err != nil {
		return nil, nil, err
	}
	for i := range aqs {
		if aqs[i].ID == assessmentQuestionID {
			items, err := s.Bank.FindByIDs([]string{aqs[i].QuestionID})
			if err != nil || len(items) == 0 {
				return nil, nil, util.ErrQuestionNotFound
			}
			return &aqs[i], &items[0], nil
		}
	}
	return nil, nil, util.ErrQuestionNotFound
}

func (s *AttemptStateMachine) questionContext(assessmentID string) (map[string]model.AssessmentQuestion, map[string]model.QuestionBankItem, error) {
	aqs, err := s.Assessments.ListQuestions(assessmentID)
	if err != nil {
		return nil, nil, err
	}
	itemMap, err := s.itemsFor(aqs)
	if err != nil {
		return nil, nil, err
	}
	aqMap := make(map[string]model.AssessmentQuestion, len(aqs))
	for _, aq := range aqs {
		aqMap[aq.ID] = aq
	}
	return aqMap, itemMap, nil
}

func (s *AttemptStateMachine) itemsFor(aqs []model.AssessmentQuestion) (map[string]model.QuestionBankItem, error) {
	ids := make([]string, len(aqs))
	for i, aq := range aqs {
		ids[i] = aq.QuestionID
	}
	items, err := s.Bank.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	itemMap := make(map[string]model.QuestionBankItem, len(items))
	for _, item := range items {
		itemMap[item.ID] = item
	}
	return itemMap, nil
}

func (s *AttemptStateMachine) questionView(aq *model.AssessmentQuestion, item *model.QuestionBankItem) (grading.QuestionView, error) {
	key, err := grading.ParseKey(item.Answer)
	if err != nil {
		return grading.QuestionView{}, err
	}
	return grading.QuestionView{
		ID:     item.ID,
		Type:   item.QuestionType,
		Points: aq.EffectivePoints(item),
		Key:    key,
	}, nil
}

// propagateGraded feeds mastery tracking and downstream events once every
// answer carries a score. Emission is best-effort.
func (s *AttemptStateMachine) propagateGraded(ctx context.Context, attempt *model.AssessmentAttempt, answers []model.AttemptAnswer, aqMap map[string]model.AssessmentQuestion, itemMap map[string]model.QuestionBankItem) {
	outcomes := make([]AnswerOutcome, 0, len(answers))
	for _, row := range answers {
		if row.Score == nil {
			continue
		}
		aq, ok := aqMap[row.AssessmentQuestionID]
		if !ok {
			continue
		}
		item, ok := itemMap[aq.QuestionID]
		if !ok {
			continue
		}
		correct := row.IsCorrect != nil && *row.IsCorrect
		outcomes = append(outcomes, AnswerOutcome{
			TopicID:   item.TopicID,
			SubjectID: item.SubjectID,
			IsCorrect: correct,
			Score:     *row.Score,
			MaxScore:  row.MaxScore,
		})
	}

	if s.Mastery != nil {
		_ = s.Mastery.RecordGradedAttempt(ctx, attempt.UserID, attempt, outcomes)
	}
	if s.Emitter != nil {
		_ = s.Emitter.Emit(ctx, events.AttemptGraded, map[string]interface{}{
			"attemptId":    attempt.ID,
			"assessmentId": attempt.AssessmentID,
			"userId":       attempt.UserID,
			"totalScore":   attempt.TotalScore,
			"maxScore":     attempt.MaxScore,
			"percentage":   attempt.Percentage,
		})
	}
	monitoring.AttemptsGraded.Inc()
}
