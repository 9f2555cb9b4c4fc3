package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"ecofinds/internal/config"
	"ecofinds/internal/domain/model"
	"ecofinds/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	//400 入力不足
	ErrValidation = errors.New("validation error")
	//401 認証失敗
	ErrUnauthorized = errors.New("unauthorized")
	//409 email重複
	ErrConflict = errors.New("conflict")
	//500
	ErrInternal = errors.New("internal error")
)

// accesstokenの有効期限（7日）
const accessTokenTTL = 7 * 24 * time.Hour

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateSignup(ctx context.Context, email string, password string, username string) error
	ValidateLogin(ctx context.Context, email string, password string) error
}

type UserDTO struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// signup/loginはtokenだけ返す
type TokenResponse struct {
	Token string `json:"token"`
}

type SignupInput struct {
	Email    string
	Password string
	Username string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthUsecase struct {
	cfg       config.Config
	users     repository.UserRepository
	validator AuthValidator
}

func NewAuthUsecase(
	cfg config.Config,
	users repository.UserRepository,
	validator AuthValidator,
) *AuthUsecase {
	return &AuthUsecase{
		cfg:       cfg,
		users:     users,
		validator: validator,
	}
}

func (u *AuthUsecase) Signup(ctx context.Context, in SignupInput) (*TokenResponse, error) {
	//保存とログイン検索が同じ形になるよう、ここでトリムを確定させる
	email := strings.TrimSpace(in.Email)
	username := strings.TrimSpace(in.Username)

	//入力検証（validatorに寄せる）
	if err := u.validator.ValidateSignup(ctx, email, in.Password, username); err != nil {
		return nil, ErrValidation
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrInternal
	}

	//ユーザー作成
	user := &model.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(pwHash),
	}

	//保存（email重複はunique違反で弾かれる）
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrConflict
		}
		return nil, ErrInternal
	}

	token, err := u.issueAccessToken(user)
	if err != nil {
		return nil, ErrInternal
	}

	return &TokenResponse{Token: token}, nil
}

func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (*TokenResponse, error) {
	//signup時と同じトリム
	email := strings.TrimSpace(in.Email)

	//入力検証
	if err := u.validator.ValidateLogin(ctx, email, in.Password); err != nil {
		return nil, ErrValidation
	}

	//ユーザー取得。存在しないかは応答で区別しない
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil || user == nil {
		return nil, ErrUnauthorized
	}

	//パスワード照合（bcrypt）
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrUnauthorized
	}

	token, err := u.issueAccessToken(user)
	if err != nil {
		return nil, ErrInternal
	}

	return &TokenResponse{Token: token}, nil
}

func (u *AuthUsecase) Me(ctx context.Context, userID int64) (*UserDTO, error) {
	if userID <= 0 {
		return nil, ErrUnauthorized
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil || user == nil {
		return nil, ErrUnauthorized
	}

	dto := toUserDTO(user)
	return &dto, nil
}

// jwt発行
func (u *AuthUsecase) issueAccessToken(user *model.User) (string, error) {
	now := time.Now()
	exp := now.Add(accessTokenTTL)

	claims := jwt.MapClaims{
		"sub": user.ID,
		"iat": now.Unix(),
		"exp": exp.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return t.SignedString([]byte(u.cfg.JWTSecret))
}

// model.UserをAPI返却用DTOに変換。
func toUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:       u.ID,
		Email:    u.Email,
		Username: u.Username,
	}
}
