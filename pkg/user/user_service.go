package user

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"CookShare-Backend/domain"
	"CookShare-Backend/entities"
	"CookShare-Backend/internal/utils"
	"CookShare-Backend/internal/utils/mailing"
	"CookShare-Backend/internal/utils/storage"
	"CookShare-Backend/pkg/jwt"
	"CookShare-Backend/pkg/recipe"
	"CookShare-Backend/pkg/relation"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const forgotPasswordTokenTTL = 30 * time.Minute

type (
	UserService interface {
		Register(ctx context.Context, req domain.RegisterRequest) (domain.UserProfile, error)
		Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error)
		Me(ctx context.Context, userID string) (domain.UserProfile, error)
		GetProfile(ctx context.Context, targetID, viewerID string) (domain.UserProfile, error)
		SetPassword(ctx context.Context, userID string, req domain.SetPasswordRequest) error
		ForgotPassword(ctx context.Context, req domain.ForgotPasswordRequest) error
		ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error
		SetAvatar(ctx context.Context, userID, base64Image string) (domain.UserProfile, error)
		Subscribe(ctx context.Context, userID, authorID string, recipesLimit int) (domain.SubscriptionEntry, error)
		Unsubscribe(ctx context.Context, userID, authorID string) error
		GetSubscriptions(ctx context.Context, userID string, page, limit, recipesLimit int) ([]domain.SubscriptionEntry, int64, error)
		DeleteUser(ctx context.Context, userID string) error
	}

	userService struct {
		userRepository   UserRepository
		recipeRepository recipe.RecipeRepository
		subscriptions    *relation.Set[entities.Subscription]
		jwtService       jwt.JWTService
		s3               storage.AwsS3
	}
)

func NewUserService(
	userRepository UserRepository,
	recipeRepository recipe.RecipeRepository,
	subscriptions *relation.Set[entities.Subscription],
	jwtService jwt.JWTService,
	s3 storage.AwsS3,
) UserService {
	return &userService{
		userRepository:   userRepository,
		recipeRepository: recipeRepository,
		subscriptions:    subscriptions,
		jwtService:       jwtService,
		s3:               s3,
	}
}

func (s *userService) Register(ctx context.Context, req domain.RegisterRequest) (domain.UserProfile, error) {
	if _, err := s.userRepository.GetUserByEmail(ctx, req.Email); err == nil {
		return domain.UserProfile{}, domain.ErrEmailAlreadyRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.UserProfile{}, err
	}
	if _, err := s.userRepository.GetUserByUsername(ctx, req.Username); err == nil {
		return domain.UserProfile{}, domain.ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.UserProfile{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.UserProfile{}, err
	}

	user := &entities.User{
		ID:        uuid.New(),
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  string(hashed),
	}
	if err := s.userRepository.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.UserProfile{}, domain.ErrEmailAlreadyRegistered
		}
		return domain.UserProfile{}, err
	}
	return toUserProfile(user, false), nil
}

func (s *userService) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	user, err := s.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.LoginResponse{}, domain.ErrCredentialsInvalid
		}
		return domain.LoginResponse{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return domain.LoginResponse{}, domain.ErrCredentialsInvalid
	}

	token := s.jwtService.GenerateTokenUser(user.ID.String())
	return domain.LoginResponse{
		Token: token,
		User:  toUserProfile(user, false),
	}, nil
}

func (s *userService) Me(ctx context.Context, userID string) (domain.UserProfile, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return domain.UserProfile{}, err
	}
	return toUserProfile(user, false), nil
}

func (s *userService) GetProfile(ctx context.Context, targetID, viewerID string) (domain.UserProfile, error) {
	user, err := s.getUser(ctx, targetID)
	if err != nil {
		return domain.UserProfile{}, err
	}

	isSubscribed := false
	if viewerID != "" {
		viewerUUID, err := uuid.Parse(viewerID)
		if err != nil {
			return domain.UserProfile{}, domain.ErrParseUUID
		}
		if isSubscribed, err = s.subscriptions.Contains(ctx, viewerUUID, user.ID); err != nil {
			return domain.UserProfile{}, err
		}
	}
	return toUserProfile(user, isSubscribed), nil
}

func (s *userService) SetPassword(ctx context.Context, userID string, req domain.SetPasswordRequest) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)) != nil {
		return domain.ErrPasswordWrong
	}
	if req.NewPassword == req.CurrentPassword {
		return domain.ErrPasswordSame
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.userRepository.UpdatePassword(ctx, user.ID, string(hashed))
}

func (s *userService) ForgotPassword(ctx context.Context, req domain.ForgotPasswordRequest) error {
	user, err := s.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	token, err := s.jwtService.GenerateTokenForgetPassword(
		map[string]any{"user_id": user.ID.String()},
		forgotPasswordTokenTTL,
	)
	if err != nil {
		return err
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", utils.GetConfig("APP_URL"), token)
	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>Follow <a href=%q>this link</a> to reset your password. The link expires in 30 minutes.</p>",
		user.FirstName, resetLink,
	)
	return mailing.SendMail(user.Email, "Reset your password", body)
}

func (s *userService) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error {
	claims, err := s.jwtService.ValidateTokenForgetPassword(req.Token)
	if err != nil {
		return err
	}
	userID, ok := claims["user_id"].(string)
	if !ok {
		return domain.ErrTokenInvalid
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.userRepository.UpdatePassword(ctx, user.ID, string(hashed))
}

func (s *userService) SetAvatar(ctx context.Context, userID, base64Image string) (domain.UserProfile, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return domain.UserProfile{}, err
	}

	objectKey, err := s.s3.UploadBase64(fmt.Sprintf("avatar-%s", user.ID.String()), base64Image, "avatars")
	if err != nil {
		return domain.UserProfile{}, err
	}
	avatarURL := s.s3.GetPublicLinkKey(objectKey)
	if user.AvatarURL != "" {
		_ = s.s3.DeleteFile(s.s3.GetObjectKeyFromLink(user.AvatarURL))
	}
	if err := s.userRepository.UpdateAvatar(ctx, user.ID, avatarURL); err != nil {
		return domain.UserProfile{}, err
	}
	user.AvatarURL = avatarURL
	return toUserProfile(user, false), nil
}

func (s *userService) Subscribe(ctx context.Context, userID, authorID string, recipesLimit int) (domain.SubscriptionEntry, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.SubscriptionEntry{}, domain.ErrParseUUID
	}
	author, err := s.getUser(ctx, authorID)
	if err != nil {
		return domain.SubscriptionEntry{}, err
	}

	if err := s.subscriptions.Add(ctx, userUUID, author.ID); err != nil {
		switch {
		case errors.Is(err, relation.ErrSelfReference):
			return domain.SubscriptionEntry{}, domain.ErrSelfSubscription
		case errors.Is(err, relation.ErrAlreadyPresent):
			return domain.SubscriptionEntry{}, domain.ErrAlreadySubscribed
		default:
			return domain.SubscriptionEntry{}, err
		}
	}
	return s.toSubscriptionEntry(ctx, author, recipesLimit)
}

func (s *userService) Unsubscribe(ctx context.Context, userID, authorID string) error {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.ErrParseUUID
	}
	author, err := s.getUser(ctx, authorID)
	if err != nil {
		return err
	}

	if err := s.subscriptions.Remove(ctx, userUUID, author.ID); err != nil {
		if errors.Is(err, relation.ErrNotPresent) {
			return domain.ErrNotSubscribed
		}
		return err
	}
	return nil
}

// GetSubscriptions lists subscribed-to authors sorted by username, each
// annotated with up to recipesLimit of their recipes and the full count.
func (s *userService) GetSubscriptions(ctx context.Context, userID string, page, limit, recipesLimit int) ([]domain.SubscriptionEntry, int64, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, 0, domain.ErrParseUUID
	}

	authorIDs, err := s.subscriptions.Targets(ctx, userUUID)
	if err != nil {
		return nil, 0, err
	}
	total := int64(len(authorIDs))
	if total == 0 {
		return []domain.SubscriptionEntry{}, 0, nil
	}

	authors, err := s.userRepository.GetUsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(authors, func(i, j int) bool {
		return authors[i].Username < authors[j].Username
	})

	start := (page - 1) * limit
	if start >= len(authors) {
		return []domain.SubscriptionEntry{}, total, nil
	}
	end := start + limit
	if end > len(authors) {
		end = len(authors)
	}

	entries := make([]domain.SubscriptionEntry, 0, end-start)
	for _, author := range authors[start:end] {
		entry, err := s.toSubscriptionEntry(ctx, author, recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, entry)
	}
	return entries, total, nil
}

func (s *userService) DeleteUser(ctx context.Context, userID string) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	return s.userRepository.DeleteUser(ctx, user.ID)
}

func (s *userService) getUser(ctx context.Context, id string) (*entities.User, error) {
	userUUID, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrParseUUID
	}
	user, err := s.userRepository.GetUserByID(ctx, userUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) toSubscriptionEntry(ctx context.Context, author *entities.User, recipesLimit int) (domain.SubscriptionEntry, error) {
	recipes, err := s.recipeRepository.GetRecipesByAuthor(ctx, author.ID, recipesLimit)
	if err != nil {
		return domain.SubscriptionEntry{}, err
	}
	count, err := s.recipeRepository.CountRecipesByAuthor(ctx, author.ID)
	if err != nil {
		return domain.SubscriptionEntry{}, err
	}

	short := make([]domain.RecipeShortResponse, 0, len(recipes))
	for _, item := range recipes {
		short = append(short, domain.RecipeShortResponse{
			ID:          item.ID.String(),
			Name:        item.Name,
			ImageURL:    item.ImageURL,
			CookingTime: item.CookingTime,
		})
	}
	return domain.SubscriptionEntry{
		UserProfile:  toUserProfile(author, true),
		Recipes:      short,
		RecipesCount: int(count),
	}, nil
}

func toUserProfile(user *entities.User, isSubscribed bool) domain.UserProfile {
	return domain.UserProfile{
		ID:           user.ID.String(),
		Email:        user.Email,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		AvatarURL:    user.AvatarURL,
		IsSubscribed: isSubscribed,
	}
}
