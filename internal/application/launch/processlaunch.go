// Package launch implements the basic launch pipeline: verify the signed
// request, resolve the user and course context, sync groups, provision
// the target forum and hand back a session-bound redirect.
package launch

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/openfun/ashley-sub000/internal/application/permission"
	"github.com/openfun/ashley-sub000/internal/domain/forum"
	"github.com/openfun/ashley-sub000/internal/domain/lti"
	"github.com/openfun/ashley-sub000/internal/domain/lticontext"
	"github.com/openfun/ashley-sub000/internal/domain/user"
	"github.com/openfun/ashley-sub000/internal/shared/errors"
	"github.com/openfun/ashley-sub000/internal/shared/logger"
	"github.com/openfun/ashley-sub000/internal/shared/utils"
)

// SessionIssuer signs the session handed out after a successful launch.
type SessionIssuer interface {
	Generate(userID, ltiContextID uint, consumerSlug string) (string, error)
}

type ProcessLaunchCommand struct {
	Method     string
	URL        string
	Params     url.Values
	ForumLTIID uuid.UUID
}

type ProcessLaunchResult struct {
	UserID       uint
	ContextID    uint
	ForumID      uint
	SessionToken string
	RedirectURL  string
	// Locale is the normalized launch_presentation_locale, "" when the
	// launch carried none.
	Locale string
}

type ProcessLaunchUseCase struct {
	verifier    *lti.Verifier
	userRepo    user.Repository
	contextRepo lticontext.Repository
	forumRepo   forum.Repository
	groupSync   *permission.GroupSyncService
	sessions    SessionIssuer
	logger      logger.Interface
}

func NewProcessLaunchUseCase(
	verifier *lti.Verifier,
	userRepo user.Repository,
	contextRepo lticontext.Repository,
	forumRepo forum.Repository,
	groupSync *permission.GroupSyncService,
	sessions SessionIssuer,
	log logger.Interface,
) *ProcessLaunchUseCase {
	return &ProcessLaunchUseCase{
		verifier:    verifier,
		userRepo:    userRepo,
		contextRepo: contextRepo,
		forumRepo:   forumRepo,
		groupSync:   groupSync,
		sessions:    sessions,
		logger:      log,
	}
}

// Execute runs the whole pipeline in launch order: verify, resolve user,
// resolve context, sync groups, provision forum, reconcile the lock flag,
// bind the session. Nothing is persisted before verification passes.
func (uc *ProcessLaunchUseCase) Execute(ctx context.Context, cmd ProcessLaunchCommand) (*ProcessLaunchResult, error) {
	launch := lti.NewLaunchRequest(cmd.Method, cmd.URL, cmd.Params)
	if err := uc.verifier.Verify(ctx, launch); err != nil {
		return nil, err
	}
	consumer := launch.GetConsumer()
	roles := launch.Roles()

	u, err := uc.resolveUser(ctx, launch, consumer.Slug(), roles)
	if err != nil {
		return nil, err
	}

	ltiCtx, err := uc.resolveContext(ctx, consumer.Slug(), launch.ContextID())
	if err != nil {
		return nil, err
	}

	if err := uc.groupSync.SyncUserGroups(ctx, u.ID(), ltiCtx, roles); err != nil {
		uc.logger.Errorw("failed to sync groups", "error", err, "user_id", u.ID(), "context_id", ltiCtx.ID())
		return nil, fmt.Errorf("failed to sync groups: %w", err)
	}

	f, err := uc.provisionForum(ctx, cmd.ForumLTIID, launch, ltiCtx)
	if err != nil {
		return nil, err
	}

	forumIDs, err := uc.contextForumIDs(ctx, ltiCtx)
	if err != nil {
		return nil, err
	}
	if err := uc.groupSync.ReconcileLockState(ctx, ltiCtx, forumIDs); err != nil {
		uc.logger.Errorw("failed to reconcile lock state", "error", err, "context_id", ltiCtx.ID())
		return nil, fmt.Errorf("failed to reconcile lock state: %w", err)
	}

	token, err := uc.sessions.Generate(u.ID(), ltiCtx.ID(), consumer.Slug())
	if err != nil {
		return nil, fmt.Errorf("failed to issue session: %w", err)
	}

	redirect := ForumURL(f)
	if u.PublicUsername() == "" {
		redirect = "/profile/username"
	}

	uc.logger.Infow("launch processed",
		"consumer", consumer.Slug(),
		"user_id", u.ID(),
		"context_id", ltiCtx.ID(),
		"forum_id", f.ID())

	return &ProcessLaunchResult{
		UserID:       u.ID(),
		ContextID:    ltiCtx.ID(),
		ForumID:      f.ID(),
		SessionToken: token,
		RedirectURL:  redirect,
		Locale:       utils.NormalizeLocale(launch.Locale()),
	}, nil
}

func (uc *ProcessLaunchUseCase) resolveUser(ctx context.Context, launch *lti.LaunchRequest, consumerSlug string, roles []string) (*user.User, error) {
	remoteID := launch.GetParam("user_id")
	if remoteID == "" {
		return nil, errors.NewForbiddenError("permission denied")
	}

	u, err := uc.userRepo.GetByConsumerAndRemoteID(ctx, consumerSlug, remoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if u == nil {
		publicName := utils.SanitizeText(launch.GetParamDefault("lis_person_sourcedid", launch.GetParam("ext_user_username")))
		email := launch.GetParam("lis_person_contact_email_primary")

		u, err = user.NewUser(consumerSlug, remoteID, email, publicName)
		if err != nil {
			return nil, fmt.Errorf("failed to build user: %w", err)
		}
		u.ApplyRoleDefaultName(roles)

		if createErr := uc.userRepo.Create(ctx, u); createErr != nil {
			if !errors.IsConflictError(createErr) {
				return nil, createErr
			}
			// Lost the race against a concurrent first launch.
			u, err = uc.userRepo.GetByConsumerAndRemoteID(ctx, consumerSlug, remoteID)
			if err != nil {
				return nil, fmt.Errorf("failed to re-look up user: %w", err)
			}
			if u == nil {
				return nil, fmt.Errorf("user vanished after duplicate create")
			}
		}
	} else if u.ApplyRoleDefaultName(roles) {
		if err := uc.userRepo.Update(ctx, u); err != nil {
			return nil, fmt.Errorf("failed to repair public username: %w", err)
		}
	}

	if !u.IsActive() {
		uc.logger.Warnw("launch by inactive user", "user_id", u.ID(), "consumer", consumerSlug)
		return nil, errors.NewForbiddenError("permission denied")
	}

	return u, nil
}

func (uc *ProcessLaunchUseCase) resolveContext(ctx context.Context, consumerSlug, contextLTIID string) (*lticontext.LTIContext, error) {
	if contextLTIID == "" {
		return nil, errors.NewInvalidLaunchError("invalid LTI launch request", "missing context_id")
	}

	ltiCtx, err := uc.contextRepo.GetByConsumerAndLTIID(ctx, consumerSlug, contextLTIID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up context: %w", err)
	}
	if ltiCtx != nil {
		return ltiCtx, nil
	}

	ltiCtx, err = lticontext.NewLTIContext(consumerSlug, contextLTIID)
	if err != nil {
		return nil, fmt.Errorf("failed to build context: %w", err)
	}
	if createErr := uc.contextRepo.Create(ctx, ltiCtx); createErr != nil {
		if !errors.IsConflictError(createErr) {
			return nil, createErr
		}
		ltiCtx, err = uc.contextRepo.GetByConsumerAndLTIID(ctx, consumerSlug, contextLTIID)
		if err != nil {
			return nil, fmt.Errorf("failed to re-look up context: %w", err)
		}
		if ltiCtx == nil {
			return nil, fmt.Errorf("context vanished after duplicate create")
		}
	}

	return ltiCtx, nil
}

// provisionForum finds or creates the forum the launch URL targets. A new
// forum takes the name of the most recent forum sharing its lti id so a
// copy-pasted course keeps its forum titles, falling back to the course
// title.
func (uc *ProcessLaunchUseCase) provisionForum(ctx context.Context, ltiID uuid.UUID, launch *lti.LaunchRequest, ltiCtx *lticontext.LTIContext) (*forum.Forum, error) {
	f, err := uc.forumRepo.GetByLTIIDAndContext(ctx, ltiID, forum.TypePost, ltiCtx.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to look up forum: %w", err)
	}
	if f != nil {
		return f, nil
	}

	name, err := uc.forumRepo.LatestNameByLTIID(ctx, ltiID)
	if err != nil {
		return nil, fmt.Errorf("failed to seed forum name: %w", err)
	}
	if name == "" {
		name = utils.SanitizeText(launch.ContextTitle())
	}
	if name == "" {
		name = "Forum"
	}

	f, err = forum.NewForum(ltiID, forum.TypePost, name)
	if err != nil {
		return nil, fmt.Errorf("failed to build forum: %w", err)
	}
	if err := uc.forumRepo.Create(ctx, f); err != nil {
		return nil, err
	}
	if attachErr := uc.forumRepo.AttachContext(ctx, f.ID(), ltiID, ltiCtx.ID()); attachErr != nil {
		if !errors.IsConflictError(attachErr) {
			return nil, attachErr
		}
		// A concurrent launch attached its forum first; ours never got
		// a grant or a member, so drop it and adopt the winner.
		if delErr := uc.forumRepo.Delete(ctx, f.ID()); delErr != nil {
			uc.logger.Warnw("failed to drop raced forum row", "error", delErr, "forum_id", f.ID())
		}
		winner, err := uc.forumRepo.GetByLTIIDAndContext(ctx, ltiID, forum.TypePost, ltiCtx.ID())
		if err != nil {
			return nil, fmt.Errorf("failed to re-look up forum: %w", err)
		}
		if winner == nil {
			return nil, fmt.Errorf("forum vanished after duplicate attach")
		}
		return winner, nil
	}
	if err := uc.groupSync.InitForumPermissions(ctx, f.ID(), ltiCtx); err != nil {
		return nil, fmt.Errorf("failed to init forum permissions: %w", err)
	}

	return f, nil
}

func (uc *ProcessLaunchUseCase) contextForumIDs(ctx context.Context, ltiCtx *lticontext.LTIContext) ([]uint, error) {
	forums, err := uc.forumRepo.ListByContext(ctx, ltiCtx.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to list context forums: %w", err)
	}
	ids := make([]uint, 0, len(forums))
	for _, f := range forums {
		ids = append(ids, f.ID())
	}
	return ids, nil
}

// ForumURL is the canonical page of a forum.
func ForumURL(f *forum.Forum) string {
	return fmt.Sprintf("/forum/forum/%s-%d/", utils.Slugify(f.Name()), f.ID())
}
