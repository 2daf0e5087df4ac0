package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	engagement "civicpulse/internal/engagement/service"
	usermodels "civicpulse/internal/identity/models"
	userstore "civicpulse/internal/identity/store/user"
	"civicpulse/internal/notify"
	"civicpulse/internal/pipeline"
	"civicpulse/internal/report/models"
	reportstore "civicpulse/internal/report/store/report"
	votestore "civicpulse/internal/report/store/vote"
	"civicpulse/pkg/domain"
	dErrors "civicpulse/pkg/domain-errors"
	"civicpulse/pkg/testutil"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event notify.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) kinds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Kind
	}
	return out
}

type ServiceSuite struct {
	suite.Suite
	ctx       context.Context
	reports   *reportstore.InMemory
	users     *userstore.InMemory
	votes     *votestore.InMemory
	ledger    *engagement.Ledger
	published *recordingPublisher
	svc       *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.reports = reportstore.NewInMemory()
	s.users = userstore.NewInMemory()
	s.votes = votestore.NewInMemory()
	s.ledger = engagement.NewLedger(s.votes, s.users)
	s.published = &recordingPublisher{}
	s.svc = NewService(
		s.reports,
		s.users,
		s.ledger,
		pipeline.NewProcessor(),
		NewMemoryTx(s.reports, s.users, s.votes),
		WithNotifier(s.published),
	)
}

func (s *ServiceSuite) newActor(role domain.Role) Actor {
	id := domain.NewUserID()
	u, err := usermodels.NewUser(id, id.String()+"@example.com", role, time.Now())
	require.NoError(s.T(), err)
	require.NoError(s.T(), s.users.Create(s.ctx, u))
	return Actor{ID: id, Role: role}
}

func (s *ServiceSuite) points(id domain.UserID) int {
	u, err := s.users.FindByID(s.ctx, id)
	require.NoError(s.T(), err)
	return u.Points
}

func (s *ServiceSuite) submit(actor Actor, raw string) *models.Report {
	report, err := s.svc.Submit(s.ctx, actor, SubmitInput{RawText: raw})
	require.NoError(s.T(), err)
	return report
}

func (s *ServiceSuite) TestSubmit() {
	s.Run("accepted report is pending, categorized and credits the author", func() {
		citizen := s.newActor(domain.RoleCitizen)

		testutil.When(s.T(), "a citizen submits a garbage report")
		report, err := s.svc.Submit(s.ctx, citizen, SubmitInput{
			RawText: "overflowing garbage bin near the market",
		})

		testutil.Then(s.T(), "it is pending sanitation with normalized text and +10 points")
		s.Require().NoError(err)
		s.Equal(domain.StatusPending, report.Status)
		s.Equal(domain.CategorySanitation, report.Category)
		s.Equal("Overflowing Garbage Bin Near The Market", report.CleanText)
		s.Equal("overflowing garbage bin near the market", report.RawText)
		s.Equal(engagement.PointsSubmitReport, s.points(citizen.ID))

		stored, err := s.reports.FindByID(s.ctx, report.ID)
		s.Require().NoError(err)
		s.Equal(report.ID, stored.ID)

		s.Equal([]string{notify.KindReportSubmitted}, s.published.kinds())
	})

	s.Run("unmatched text stays uncategorized", func() {
		report := s.submit(s.newActor(domain.RoleCitizen), "something is wrong around here")
		s.True(report.Category.IsZero())
	})

	s.Run("anonymous caller is forbidden", func() {
		_, err := s.svc.Submit(s.ctx, Actor{}, SubmitInput{RawText: "a perfectly valid description"})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("short description is rejected before any mutation", func() {
		citizen := s.newActor(domain.RoleCitizen)

		_, err := s.svc.Submit(s.ctx, citizen, SubmitInput{RawText: "  too short  "})

		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal(0, s.points(citizen.ID))
	})

	s.Run("location and image reference are carried through", func() {
		loc := &models.Location{Latitude: 6.5244, Longitude: 3.3792}
		report, err := s.svc.Submit(s.ctx, s.newActor(domain.RoleCitizen), SubmitInput{
			RawText:  "burst water pipe flooding the street",
			Location: loc,
			ImageRef: "mem://reports/pipe.jpg",
		})

		s.Require().NoError(err)
		s.Equal(loc, report.Location)
		s.Equal("mem://reports/pipe.jpg", report.ImageRef)
		s.Equal(domain.CategoryWater, report.Category)
	})

}

func (s *ServiceSuite) TestSubmitRollback() {
	ghost := Actor{ID: domain.NewUserID(), Role: domain.RoleCitizen}

	testutil.When(s.T(), "the author does not exist so the point credit fails")
	report, err := s.svc.Submit(s.ctx, ghost, SubmitInput{
		RawText: "pothole on the main road again",
	})

	testutil.Then(s.T(), "no report survives the rolled-back unit of work")
	s.Error(err)
	s.Nil(report)
	rows, listErr := s.reports.List(s.ctx, models.ListFilter{})
	s.Require().NoError(listErr)
	s.Empty(rows)
	s.Empty(s.published.kinds())
}

func (s *ServiceSuite) TestCastVote() {
	s.Run("vote returns the new count and credits the voter", func() {
		author := s.newActor(domain.RoleCitizen)
		voter := s.newActor(domain.RoleCitizen)
		report := s.submit(author, "streetlight out on elm avenue")

		count, err := s.svc.CastVote(s.ctx, voter, report.ID)

		s.Require().NoError(err)
		s.Equal(1, count)
		s.Equal(engagement.PointsCastVote, s.points(voter.ID))
	})

	s.Run("duplicate vote is rejected and changes nothing", func() {
		voter := s.newActor(domain.RoleCitizen)
		report := s.submit(s.newActor(domain.RoleCitizen), "streetlight out on elm avenue")

		_, err := s.svc.CastVote(s.ctx, voter, report.ID)
		s.Require().NoError(err)

		_, err = s.svc.CastVote(s.ctx, voter, report.ID)

		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyVoted))
		s.Equal(engagement.PointsCastVote, s.points(voter.ID))
		count, countErr := s.votes.CountByReport(s.ctx, report.ID)
		s.Require().NoError(countErr)
		s.Equal(1, count)
	})

	s.Run("unknown report is not found", func() {
		_, err := s.svc.CastVote(s.ctx, s.newActor(domain.RoleCitizen), domain.NewReportID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("anonymous caller is forbidden", func() {
		report := s.submit(s.newActor(domain.RoleCitizen), "streetlight out on elm avenue")
		_, err := s.svc.CastVote(s.ctx, Actor{}, report.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *ServiceSuite) TestChangeStatus() {
	s.Run("moderator transition updates status and credits +3", func() {
		moderator := s.newActor(domain.RoleModerator)
		report := s.submit(s.newActor(domain.RoleCitizen), "dangerous open manhole near school")

		updated, err := s.svc.ChangeStatus(s.ctx, moderator, report.ID, domain.StatusResolved)

		s.Require().NoError(err)
		s.Equal(domain.StatusResolved, updated.Status)
		s.Equal(engagement.PointsStatusChange, s.points(moderator.ID))

		stored, err := s.reports.FindByID(s.ctx, report.ID)
		s.Require().NoError(err)
		s.Equal(domain.StatusResolved, stored.Status)
		s.Contains(s.published.kinds(), notify.KindReportStatusChanged)
	})

	s.Run("same-status transition is a no-op with no credit", func() {
		moderator := s.newActor(domain.RoleModerator)
		report := s.submit(s.newActor(domain.RoleCitizen), "dangerous open manhole near school")

		_, err := s.svc.ChangeStatus(s.ctx, moderator, report.ID, domain.StatusResolved)
		s.Require().NoError(err)
		creditedOnce := s.points(moderator.ID)
		eventsBefore := len(s.published.kinds())

		updated, err := s.svc.ChangeStatus(s.ctx, moderator, report.ID, domain.StatusResolved)

		s.Require().NoError(err)
		s.Equal(domain.StatusResolved, updated.Status)
		s.Equal(creditedOnce, s.points(moderator.ID))
		s.Len(s.published.kinds(), eventsBefore)
	})

	s.Run("every status reaches every other", func() {
		admin := s.newActor(domain.RoleAdmin)
		for _, from := range domain.Statuses() {
			for _, to := range domain.Statuses() {
				if from == to {
					continue
				}
				report := s.submit(s.newActor(domain.RoleCitizen), "pothole on the main road again")
				if from != domain.StatusPending {
					_, err := s.svc.ChangeStatus(s.ctx, admin, report.ID, from)
					s.Require().NoError(err)
				}

				updated, err := s.svc.ChangeStatus(s.ctx, admin, report.ID, to)

				s.Require().NoError(err)
				s.Equal(to, updated.Status)
			}
		}
	})

	s.Run("citizen and anonymous are forbidden", func() {
		report := s.submit(s.newActor(domain.RoleCitizen), "pothole on the main road again")

		_, err := s.svc.ChangeStatus(s.ctx, s.newActor(domain.RoleCitizen), report.ID, domain.StatusReviewed)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

		_, err = s.svc.ChangeStatus(s.ctx, Actor{}, report.ID, domain.StatusReviewed)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("unknown report is not found", func() {
		_, err := s.svc.ChangeStatus(s.ctx, s.newActor(domain.RoleAdmin), domain.NewReportID(), domain.StatusReviewed)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestList() {
	s.Run("attaches vote counts", func() {
		report := s.submit(s.newActor(domain.RoleCitizen), "garbage piling up by the bus stop")
		for range 2 {
			_, err := s.svc.CastVote(s.ctx, s.newActor(domain.RoleCitizen), report.ID)
			s.Require().NoError(err)
		}

		rows, err := s.svc.List(s.ctx, models.ListFilter{})

		s.Require().NoError(err)
		s.Require().Len(rows, 1)
		s.Equal(2, rows[0].VotesCount)
	})

	s.Run("most_votes orders by count and honors the limit", func() {
		quiet := s.submit(s.newActor(domain.RoleCitizen), "garbage piling up by the bus stop")
		popular := s.submit(s.newActor(domain.RoleCitizen), "burst water pipe flooding the street")
		middling := s.submit(s.newActor(domain.RoleCitizen), "streetlight out on elm avenue")
		for range 3 {
			_, err := s.svc.CastVote(s.ctx, s.newActor(domain.RoleCitizen), popular.ID)
			s.Require().NoError(err)
		}
		_, err := s.svc.CastVote(s.ctx, s.newActor(domain.RoleCitizen), middling.ID)
		s.Require().NoError(err)

		rows, err := s.svc.List(s.ctx, models.ListFilter{Sort: models.SortMostVotes, Limit: 2})

		s.Require().NoError(err)
		s.Require().Len(rows, 2)
		s.Equal(popular.ID, rows[0].Report.ID)
		s.Equal(middling.ID, rows[1].Report.ID)
		_ = quiet
	})
}

func (s *ServiceSuite) TestGet() {
	voter := s.newActor(domain.RoleCitizen)
	report := s.submit(s.newActor(domain.RoleCitizen), "streetlight out on elm avenue")
	_, err := s.svc.CastVote(s.ctx, voter, report.ID)
	s.Require().NoError(err)

	s.Run("includes vote count and voter state", func() {
		detail, err := s.svc.Get(s.ctx, report.ID, voter.ID)
		s.Require().NoError(err)
		s.Equal(1, detail.VotesCount)
		s.True(detail.HasVoted)
	})

	s.Run("anonymous viewer has not voted", func() {
		detail, err := s.svc.Get(s.ctx, report.ID, domain.UserID{})
		s.Require().NoError(err)
		s.False(detail.HasVoted)
	})

	s.Run("unknown report is not found", func() {
		_, err := s.svc.Get(s.ctx, domain.NewReportID(), domain.UserID{})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestAdminQueue() {
	s.submit(s.newActor(domain.RoleCitizen), "garbage piling up by the bus stop")

	s.Run("moderator sees the queue", func() {
		rows, err := s.svc.AdminQueue(s.ctx, s.newActor(domain.RoleModerator), models.ListFilter{})
		s.Require().NoError(err)
		s.Len(rows, 1)
	})

	s.Run("citizen is forbidden", func() {
		_, err := s.svc.AdminQueue(s.ctx, s.newActor(domain.RoleCitizen), models.ListFilter{})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *ServiceSuite) TestLeaderboard() {
	alice := s.newActor(domain.RoleCitizen)
	bob := s.newActor(domain.RoleCitizen)
	s.submit(alice, "garbage piling up by the bus stop")
	_, err := s.svc.CastVote(s.ctx, bob, s.submit(alice, "burst water pipe flooding the street").ID)
	s.Require().NoError(err)

	entries, err := s.svc.Leaderboard(s.ctx, 5)

	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal(alice.ID, entries[0].UserID)
	s.Equal(2*engagement.PointsSubmitReport, entries[0].Points)
	s.Equal(bob.ID, entries[1].UserID)
	s.Equal(engagement.PointsCastVote, entries[1].Points)
}
