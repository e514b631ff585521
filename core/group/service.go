package group

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/studyhall/studyhall/core"
	"github.com/studyhall/studyhall/core/access"
	"github.com/studyhall/studyhall/core/user"
)

type (
	Repository interface {
		CreateGroup(ctx context.Context, grp Group, exec ...core.DBExecutor) (Group, error)
		GetGroup(ctx context.Context, id string, exec ...core.DBExecutor) (Group, error)
		// QueryGroups returns the Groups the User is a member of, in creation order.
		QueryGroups(ctx context.Context, userID string, exec ...core.DBExecutor) ([]Group, error)
		// AddMember inserts the Membership unless it already exists.
		// It returns the stored Membership and whether it was created by this call.
		AddMember(ctx context.Context, m Membership, exec ...core.DBExecutor) (Membership, bool, error)
		// QueryMembers returns the members of a Group in joining order.
		QueryMembers(ctx context.Context, groupID string, exec ...core.DBExecutor) ([]user.User, error)
		// CreateShare inserts the Share unless the Note is already shared into the Group,
		// and returns the stored Share.
		CreateShare(ctx context.Context, s Share, exec ...core.DBExecutor) (Share, error)
		// DeleteShare returns core.ErrNotFound when there was no such Share.
		DeleteShare(ctx context.Context, noteID, groupID string, exec ...core.DBExecutor) error
		// QuerySharedNotes returns the Notes shared into a Group, most recently shared first.
		QuerySharedNotes(ctx context.Context, groupID string, exec ...core.DBExecutor) ([]SharedNote, error)
	}

	Service interface {
		Create(ctx context.Context, callerID string, ng NewGroup) (Group, error)
		Get(ctx context.Context, callerID, id string) (Group, error)
		ListForUser(ctx context.Context, callerID string) ([]Group, error)
		ListMembers(ctx context.Context, callerID, groupID string) ([]user.User, error)
		Invite(ctx context.Context, callerID, groupID string, ir InviteRequest) (Membership, error)
		ShareNote(ctx context.Context, callerID, noteID string, sr ShareRequest) (Share, error)
		UnshareNote(ctx context.Context, callerID, noteID, groupID string) error
		ListNotes(ctx context.Context, callerID, groupID string) ([]SharedNote, error)
	}

	service struct {
		db       core.DB
		repo     Repository
		usrRepo  user.Repository
		guard    *access.Guard
		mailSvc  core.EmailService
		validate *validator.Validate
		conf     *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(
	db core.DB,
	repo Repository,
	usrRepo user.Repository,
	guard *access.Guard,
	mailSvc core.EmailService,
	validate *validator.Validate,
	conf *core.Config,
) Service {
	return &service{
		db:       db,
		repo:     repo,
		usrRepo:  usrRepo,
		guard:    guard,
		mailSvc:  mailSvc,
		validate: validate,
		conf:     conf,
	}
}

// Create stores the Group and makes the caller its first member.
func (svc *service) Create(ctx context.Context, callerID string, ng NewGroup) (Group, error) {
	if err := ng.Validate(svc.validate); err != nil {
		return Group{}, err
	}

	now := core.NowFunc()
	var grp Group
	err := core.WithTx(ctx, svc.db, func(tx core.DBExecutor) error {
		var err error
		grp, err = svc.repo.CreateGroup(ctx, Group{
			Name:        ng.Name,
			Description: ng.Description,
			CreatedBy:   callerID,
			CreatedAt:   now,
		}, tx)
		if err != nil {
			return errors.Wrap(err, "creating group")
		}
		_, _, err = svc.repo.AddMember(ctx, Membership{GroupID: grp.ID, UserID: callerID, JoinedAt: now}, tx)
		return errors.Wrap(err, "adding creator to group")
	})
	return grp, err
}

func (svc *service) Get(ctx context.Context, callerID, id string) (Group, error) {
	if err := svc.guard.Authorize(ctx, callerID, access.GroupRef(id)); err != nil {
		return Group{}, err
	}
	return svc.repo.GetGroup(ctx, id)
}

func (svc *service) ListForUser(ctx context.Context, callerID string) ([]Group, error) {
	groups, err := svc.repo.QueryGroups(ctx, callerID)
	if err != nil {
		return nil, errors.Wrap(err, "querying groups")
	}
	if groups == nil {
		groups = []Group{}
	}
	return groups, nil
}

func (svc *service) ListMembers(ctx context.Context, callerID, groupID string) ([]user.User, error) {
	if err := svc.guard.Authorize(ctx, callerID, access.GroupRef(groupID)); err != nil {
		return nil, err
	}
	members, err := svc.repo.QueryMembers(ctx, groupID)
	if err != nil {
		return nil, errors.Wrap(err, "querying members")
	}
	if members == nil {
		members = []user.User{}
	}
	return members, nil
}

// Invite adds the User registered with the given email to the Group.
// Inviting a current member succeeds without changing anything.
func (svc *service) Invite(ctx context.Context, callerID, groupID string, ir InviteRequest) (Membership, error) {
	if err := ir.Validate(svc.validate); err != nil {
		return Membership{}, err
	}
	grp, err := svc.Get(ctx, callerID, groupID)
	if err != nil {
		return Membership{}, err
	}

	invitee, err := svc.usrRepo.GetUser(ctx, user.GetFilter{Email: ir.Email})
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return Membership{}, user.ErrNotFound
		}
		return Membership{}, errors.Wrap(err, "finding invitee")
	}

	m, created, err := svc.repo.AddMember(ctx, Membership{GroupID: grp.ID, UserID: invitee.ID, JoinedAt: core.NowFunc()})
	if err != nil {
		return Membership{}, errors.Wrap(err, "adding member")
	}
	if created {
		svc.notifyInvitee(ctx, grp, invitee, callerID)
	}
	return m, nil
}

func (svc *service) notifyInvitee(ctx context.Context, grp Group, invitee user.User, inviterID string) {
	inviter, err := svc.usrRepo.GetUser(ctx, user.GetFilter{ID: inviterID})
	if err != nil {
		inviter = user.User{Name: "A colleague"}
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: invitee.Name, Address: invitee.Email}},
		Subject:      fmt.Sprintf("You have been added to %q", grp.Name),
		TemplateName: "group_invite",
		TemplateData: inviteMailData{
			AppName:   svc.conf.AppName,
			Name:      invitee.Name,
			InvitedBy: inviter.Name,
			GroupName: grp.Name,
			GroupsURL: svc.conf.FrontendBaseURL + "/groups",
		},
	})
}

type inviteMailData struct {
	AppName   string
	Name      string
	InvitedBy string
	GroupName string
	GroupsURL string
}

// ShareNote links a Note owned by the caller to a Group the caller is a member of.
// Sharing an already shared Note returns the existing Share.
func (svc *service) ShareNote(ctx context.Context, callerID, noteID string, sr ShareRequest) (Share, error) {
	if err := sr.Validate(svc.validate); err != nil {
		return Share{}, err
	}
	if err := svc.guard.Authorize(ctx, callerID, access.NoteRef(noteID)); err != nil {
		return Share{}, err
	}
	if err := svc.guard.Authorize(ctx, callerID, access.GroupRef(sr.GroupID)); err != nil {
		return Share{}, err
	}

	s, err := svc.repo.CreateShare(ctx, Share{
		NoteID:   noteID,
		GroupID:  sr.GroupID,
		SharedBy: callerID,
		SharedAt: core.NowFunc(),
	})
	return s, errors.Wrap(err, "sharing note")
}

// UnshareNote removes a Note from a Group. Any member may do it; the Note itself is kept.
func (svc *service) UnshareNote(ctx context.Context, callerID, noteID, groupID string) error {
	if err := svc.guard.Authorize(ctx, callerID, access.GroupRef(groupID)); err != nil {
		return err
	}
	if err := svc.repo.DeleteShare(ctx, noteID, groupID); err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return core.ErrNotFound
		}
		return errors.Wrap(err, "unsharing note")
	}
	return nil
}

func (svc *service) ListNotes(ctx context.Context, callerID, groupID string) ([]SharedNote, error) {
	if err := svc.guard.Authorize(ctx, callerID, access.GroupRef(groupID)); err != nil {
		return nil, err
	}
	notes, err := svc.repo.QuerySharedNotes(ctx, groupID)
	if err != nil {
		return nil, errors.Wrap(err, "querying shared notes")
	}
	res := make([]SharedNote, 0, len(notes))
	for _, n := range notes {
		n.HasAttachment = n.Note.HasAttachment()
		res = append(res, n)
	}
	return res, nil
}
