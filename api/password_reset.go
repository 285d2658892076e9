package api

import (
	"time"

	"lifebook/config"
	"lifebook/database"
	"lifebook/models"
	"lifebook/service"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// PasswordResetHandler 忘记密码处理器
type PasswordResetHandler struct {
	emailService *service.EmailService
}

// NewPasswordResetHandler 创建忘记密码处理器
func NewPasswordResetHandler(cfg *config.Config) *PasswordResetHandler {
	return &PasswordResetHandler{
		emailService: service.NewEmailService(&cfg.Email),
	}
}

// 重置验证码有效期
const resetCodeTTL = 10 * time.Minute

// ForgotPasswordRequest 请求重置验证码
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email" example:"test@example.com"`
}

// ForgotPassword 发送密码重置验证码
// @Summary 发送密码重置验证码
// @Description 向注册邮箱发送 6 位重置验证码，有效期 10 分钟
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body ForgotPasswordRequest true "注册邮箱"
// @Success 200 {object} Response "发送成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/auth/password/request-reset [post]
func (h *PasswordResetHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	// 邮箱未注册时返回同样的文案，不暴露账号是否存在
	neutral := "如果该邮箱已注册，验证码已发送，请查收"

	var user models.User
	if err := database.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		SuccessWithMessage(c, neutral, nil)
		return
	}

	code, err := models.GenerateResetCode()
	if err != nil {
		InternalError(c, "生成验证码失败")
		return
	}

	reset := models.PasswordReset{
		UserID:    user.ID,
		Email:     user.Email,
		Code:      code,
		ExpiresAt: time.Now().Add(resetCodeTTL),
	}
	if err := database.DB.Create(&reset).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "保存验证码失败"))
		return
	}

	if err := h.emailService.SendPasswordResetEmail(user.Email, user.Username, code); err != nil {
		InternalError(c, SafeErrorMessage(err, "发送邮件失败"))
		return
	}

	SuccessWithMessage(c, neutral, nil)
}

// VerifyResetCodeRequest 预校验验证码
type VerifyResetCodeRequest struct {
	Email string `json:"email" binding:"required,email" example:"test@example.com"`
	Code  string `json:"code" binding:"required,len=6" example:"123456"`
}

// VerifyResetCode 预校验验证码
// @Summary 校验重置验证码
// @Description 校验验证码是否有效，校验通过不消耗验证码
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body VerifyResetCodeRequest true "校验信息"
// @Success 200 {object} Response "验证码有效"
// @Failure 400 {object} Response "验证码无效或已过期"
// @Router /api/v1/auth/password/verify-code [post]
func (h *PasswordResetHandler) VerifyResetCode(c *gin.Context) {
	var req VerifyResetCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	var reset models.PasswordReset
	err := database.DB.Where("email = ? AND code = ? AND used = ?", req.Email, req.Code, false).
		Order("id DESC").First(&reset).Error
	if err != nil || !reset.IsValid() {
		BadRequest(c, "验证码无效或已过期")
		return
	}

	SuccessWithMessage(c, "验证码有效", nil)
}

// ResetPasswordRequest 使用验证码重置密码
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email" example:"test@example.com"`
	Code        string `json:"code" binding:"required,len=6" example:"123456"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=50" example:"newpassword123"`
}

// ResetPassword 使用验证码重置密码
// @Summary 重置密码
// @Description 校验邮箱验证码并设置新密码，验证码一次性有效
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "重置信息"
// @Success 200 {object} Response "重置成功"
// @Failure 400 {object} Response "验证码无效或已过期"
// @Router /api/v1/auth/password/reset [post]
func (h *PasswordResetHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	var reset models.PasswordReset
	err := database.DB.Where("email = ? AND code = ? AND used = ?", req.Email, req.Code, false).
		Order("id DESC").First(&reset).Error
	if err != nil || !reset.IsValid() {
		BadRequest(c, "验证码无效或已过期")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		InternalError(c, "密码加密失败")
		return
	}

	if err := database.DB.Model(&models.User{}).Where("id = ?", reset.UserID).
		Update("password", string(hashedPassword)).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新密码失败"))
		return
	}

	// 立即作废验证码
	if err := database.DB.Model(&reset).Update("used", true).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新验证码状态失败"))
		return
	}

	SuccessWithMessage(c, "密码重置成功，请使用新密码登录", nil)
}
