package validation

import "regexp"

// 各フォームで共通に使うフィールドパス。
const (
	FieldEmail                = "email"
	FieldName                 = "name"
	FieldPassword             = "password"
	FieldPasswordConfirmation = "password_confirmation"
	FieldConfirmationPassword = "confirmation_password"
	FieldResetPasswordToken   = "reset_password_token"
	FieldCurrentPassword      = "current_password"
)

// 画面に表示するメッセージ。
const (
	MsgEmailRequired           = "Email is required"
	MsgEmailInvalid            = "Invalid email address"
	MsgPasswordRequired        = "Password is required"
	MsgPasswordMin6            = "Password must be at least 6 characters"
	MsgPasswordMin8            = "Password must be at least 8 characters"
	MsgPasswordDigit           = "Password must contain at least one number"
	MsgPasswordTooLong         = "Password must be at most 72 bytes"
	MsgNameRequired            = "Name is required"
	MsgNameMin                 = "Name must be at least 2 characters"
	MsgNameMax                 = "Name must be at most 50 characters"
	MsgConfirmationRequired    = "Please confirm your password"
	MsgPasswordsDoNotMatch     = "Passwords do not match"
	MsgResetTokenRequired      = "Reset token is required"
	MsgCurrentPasswordRequired = "Current password is required"
)

var digitPattern = regexp.MustCompile(`[0-9]`)

func emailRules() []Rule {
	return []Rule{
		Required(MsgEmailRequired),
		Email(MsgEmailInvalid),
	}
}

// passwordRules はログイン用の最低限のパスワードルール。
func passwordRules() []Rule {
	return []Rule{
		Required(MsgPasswordRequired),
		MinLength(6, MsgPasswordMin6),
	}
}

// strongPasswordRules は登録・リセット・変更で使う強いパスワードルール。
// 8文字以上で数字を1文字以上含む必要がある。
func strongPasswordRules() []Rule {
	return []Rule{
		Required(MsgPasswordRequired),
		MinLength(8, MsgPasswordMin8),
		Pattern(digitPattern, MsgPasswordDigit),
	}
}

func nameRules() []Rule {
	return []Rule{
		Required(MsgNameRequired),
		MinLength(2, MsgNameMin),
		MaxLength(50, MsgNameMax),
	}
}

func confirmationRules() []Rule {
	return []Rule{Required(MsgConfirmationRequired)}
}

func passwordsMatch(confirmationField string) CrossFieldRule {
	return CrossFieldRule{
		Field: confirmationField,
		Rule:  EqualsField(FieldPassword, MsgPasswordsDoNotMatch),
	}
}

// LoginSchema はログインフォームのスキーマ。
var LoginSchema = Schema{
	Name: "login",
	Fields: []FieldRules{
		{Field: FieldEmail, Rules: emailRules()},
		{Field: FieldPassword, Rules: passwordRules()},
	},
}

// RegisterSchema は会員登録フォームのスキーマ。
var RegisterSchema = Schema{
	Name: "register",
	Fields: []FieldRules{
		{Field: FieldEmail, Rules: emailRules()},
		{Field: FieldName, Rules: nameRules()},
		{Field: FieldPassword, Rules: strongPasswordRules()},
		{Field: FieldPasswordConfirmation, Rules: confirmationRules()},
	},
	Cross: []CrossFieldRule{passwordsMatch(FieldPasswordConfirmation)},
}

// ForgotPasswordSchema はパスワードリセット申請フォームのスキーマ。
var ForgotPasswordSchema = Schema{
	Name: "forgot_password",
	Fields: []FieldRules{
		{Field: FieldEmail, Rules: emailRules()},
	},
}

// ResetPasswordSchema はAPI送信用のパスワードリセットスキーマ。
// reset_password_tokenは外部発行の不透明な値のため存在のみ検証する。
var ResetPasswordSchema = Schema{
	Name: "reset_password",
	Fields: []FieldRules{
		{Field: FieldResetPasswordToken, Rules: []Rule{Required(MsgResetTokenRequired)}},
		{Field: FieldPassword, Rules: strongPasswordRules()},
		{Field: FieldConfirmationPassword, Rules: confirmationRules()},
	},
	Cross: []CrossFieldRule{passwordsMatch(FieldConfirmationPassword)},
}

// ResetPasswordFormSchema はフォーム内検証用のスキーマ。
// トークンはURLなど別経路で渡されるためフィールドに含めない。
var ResetPasswordFormSchema = Schema{
	Name: "reset_password_form",
	Fields: []FieldRules{
		{Field: FieldPassword, Rules: strongPasswordRules()},
		{Field: FieldConfirmationPassword, Rules: confirmationRules()},
	},
	Cross: []CrossFieldRule{passwordsMatch(FieldConfirmationPassword)},
}

// ChangePasswordSchema はパスワード変更フォームのスキーマ。
// 現在のパスワードは形式を検証せず、存在のみ確認する。
var ChangePasswordSchema = Schema{
	Name: "change_password",
	Fields: []FieldRules{
		{Field: FieldCurrentPassword, Rules: []Rule{Required(MsgCurrentPasswordRequired)}},
		{Field: FieldPassword, Rules: strongPasswordRules()},
		{Field: FieldPasswordConfirmation, Rules: confirmationRules()},
	},
	Cross: []CrossFieldRule{passwordsMatch(FieldPasswordConfirmation)},
}

// LoginInput はログインフォームの入力。
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Fields はInputインターフェースを実装する。
func (in LoginInput) Fields() map[string]string {
	return map[string]string{
		FieldEmail:    in.Email,
		FieldPassword: in.Password,
	}
}

// RegisterInput は会員登録フォームの入力。
type RegisterInput struct {
	Email                string `json:"email"`
	Name                 string `json:"name"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// Fields はInputインターフェースを実装する。
func (in RegisterInput) Fields() map[string]string {
	return map[string]string{
		FieldEmail:                in.Email,
		FieldName:                 in.Name,
		FieldPassword:             in.Password,
		FieldPasswordConfirmation: in.PasswordConfirmation,
	}
}

// ForgotPasswordInput はパスワードリセット申請の入力。
type ForgotPasswordInput struct {
	Email string `json:"email"`
}

// Fields はInputインターフェースを実装する。
func (in ForgotPasswordInput) Fields() map[string]string {
	return map[string]string{FieldEmail: in.Email}
}

// ResetPasswordInput はパスワードリセットの入力。
type ResetPasswordInput struct {
	ResetPasswordToken   string `json:"reset_password_token"`
	Password             string `json:"password"`
	ConfirmationPassword string `json:"confirmation_password"`
}

// Fields はInputインターフェースを実装する。
func (in ResetPasswordInput) Fields() map[string]string {
	return map[string]string{
		FieldResetPasswordToken:   in.ResetPasswordToken,
		FieldPassword:             in.Password,
		FieldConfirmationPassword: in.ConfirmationPassword,
	}
}

// ChangePasswordInput はパスワード変更の入力。
type ChangePasswordInput struct {
	CurrentPassword      string `json:"current_password"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// Fields はInputインターフェースを実装する。
func (in ChangePasswordInput) Fields() map[string]string {
	return map[string]string{
		FieldCurrentPassword:      in.CurrentPassword,
		FieldPassword:             in.Password,
		FieldPasswordConfirmation: in.PasswordConfirmation,
	}
}

// ValidateLogin はログイン入力を検証する。
func ValidateLogin(in LoginInput) Errors {
	return Validate(LoginSchema, in)
}

// ValidateRegister は会員登録入力を検証する。
func ValidateRegister(in RegisterInput) Errors {
	return Validate(RegisterSchema, in)
}

// ValidateForgotPassword はリセット申請入力を検証する。
func ValidateForgotPassword(in ForgotPasswordInput) Errors {
	return Validate(ForgotPasswordSchema, in)
}

// ValidateResetPassword はAPI送信用のリセット入力を検証する。
func ValidateResetPassword(in ResetPasswordInput) Errors {
	return Validate(ResetPasswordSchema, in)
}

// ValidateResetPasswordForm はトークンを除いたリセット入力を検証する。
func ValidateResetPasswordForm(in ResetPasswordInput) Errors {
	return Validate(ResetPasswordFormSchema, in)
}

// ValidateChangePassword はパスワード変更入力を検証する。
func ValidateChangePassword(in ChangePasswordInput) Errors {
	return Validate(ChangePasswordSchema, in)
}
