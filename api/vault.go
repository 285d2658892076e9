package api

import (
	"strconv"
	"strings"

	"lifebook/config"
	"lifebook/database"
	"lifebook/middleware"
	"lifebook/models"
	"lifebook/service"

	"github.com/gin-gonic/gin"
)

// VaultHandler 密码保险箱处理器
// 密码加密后落库，常规列表接口永不返回明文，只有 reveal 接口现场解密
type VaultHandler struct {
	crypto *service.EncryptionService
}

// NewVaultHandler 创建密码保险箱处理器
func NewVaultHandler(cfg *config.Config) (*VaultHandler, error) {
	crypto, err := service.NewEncryptionService(cfg.Encryption.Key)
	if err != nil {
		return nil, err
	}
	return &VaultHandler{crypto: crypto}, nil
}

// PasswordCategoryRequest 创建密码类别请求
type PasswordCategoryRequest struct {
	Name        string `json:"name" binding:"required,max=50" example:"Shopping"`
	Description string `json:"description" binding:"omitempty,max=200" example:"购物网站账号"`
}

// StoredPasswordRequest 创建/更新密码条目请求
type StoredPasswordRequest struct {
	CategoryID uint   `json:"category_id" binding:"required" example:"1"`
	SiteName   string `json:"site_name" binding:"required,max=100" example:"GitHub"`
	Username   string `json:"username" binding:"required,max=255" example:"octocat"`
	Password   string `json:"password" binding:"required,max=255"`
	SiteURL    string `json:"site_url" binding:"omitempty,max=255" example:"https://github.com"`
	Notes      string `json:"notes" binding:"omitempty,max=500"`
}

// RevealResponse 明文密码响应
type RevealResponse struct {
	ID       uint   `json:"id"`
	Password string `json:"password"`
}

// ListCategories 获取密码类别列表
// @Summary 获取密码类别列表
// @Tags 密码保险箱
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.PasswordCategory} "获取成功"
// @Router /api/v1/vault/categories [get]
func (h *VaultHandler) ListCategories(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var categories []models.PasswordCategory
	if err := database.DB.Where("user_id = ?", userID).
		Order("is_default DESC, name ASC").Find(&categories).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询密码类别失败"))
		return
	}

	Success(c, categories)
}

// CreateCategory 创建密码类别
// @Summary 创建密码类别
// @Tags 密码保险箱
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PasswordCategoryRequest true "类别信息"
// @Success 200 {object} Response{data=models.PasswordCategory} "创建成功"
// @Failure 409 {object} Response "名称已存在"
// @Router /api/v1/vault/categories [post]
func (h *VaultHandler) CreateCategory(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req PasswordCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		BadRequest(c, "类别名称不能为空")
		return
	}

	var count int64
	database.DB.Model(&models.PasswordCategory{}).
		Where("user_id = ? AND LOWER(name) = ?", userID, strings.ToLower(name)).
		Count(&count)
	if count > 0 {
		Error(c, 409, "类别名称已存在")
		return
	}

	cat := models.PasswordCategory{
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
	}
	if err := database.DB.Create(&cat).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建密码类别失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", cat)
}

// DeleteCategory 删除密码类别
// @Summary 删除密码类别
// @Description 默认类别与仍有密码条目的类别不允许删除
// @Tags 密码保险箱
// @Produce json
// @Security BearerAuth
// @Param id path int true "类别 ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "类别不存在"
// @Failure 409 {object} Response "类别不允许删除"
// @Router /api/v1/vault/categories/{id} [delete]
func (h *VaultHandler) DeleteCategory(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的类别 ID")
		return
	}

	var cat models.PasswordCategory
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&cat).Error; err != nil {
		NotFound(c, "类别不存在")
		return
	}
	if cat.IsDefault {
		Error(c, 409, "默认类别不允许删除")
		return
	}

	var count int64
	database.DB.Model(&models.StoredPassword{}).
		Where("user_id = ? AND category_id = ?", userID, cat.ID).
		Count(&count)
	if count > 0 {
		Error(c, 409, "类别下仍有记录，无法删除")
		return
	}

	if err := database.DB.Delete(&cat).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除密码类别失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}

// Create 创建密码条目
// @Summary 创建密码条目
// @Description 密码以 AES-256-GCM 加密后落库，明文不留痕
// @Tags 密码保险箱
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body StoredPasswordRequest true "密码条目"
// @Success 200 {object} Response{data=models.StoredPassword} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/vault/passwords [post]
func (h *VaultHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req StoredPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	var cat models.PasswordCategory
	if err := database.DB.Where("id = ? AND user_id = ?", req.CategoryID, userID).First(&cat).Error; err != nil {
		NotFound(c, "类别不存在")
		return
	}

	encrypted, err := h.crypto.Encrypt(req.Password)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "加密密码失败"))
		return
	}

	entry := models.StoredPassword{
		UserID:            userID,
		CategoryID:        cat.ID,
		SiteName:          strings.TrimSpace(req.SiteName),
		Username:          strings.TrimSpace(req.Username),
		EncryptedPassword: encrypted,
		SiteURL:           strings.TrimSpace(req.SiteURL),
		Notes:             strings.TrimSpace(req.Notes),
	}
	if err := database.DB.Create(&entry).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建密码条目失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", entry)
}

// List 获取密码条目列表
// @Summary 获取密码条目列表
// @Description 返回站点与用户名等元数据，不含密码明文或密文
// @Tags 密码保险箱
// @Produce json
// @Security BearerAuth
// @Param category_id query int false "类别筛选"
// @Success 200 {object} Response{data=[]models.StoredPassword} "获取成功"
// @Router /api/v1/vault/passwords [get]
func (h *VaultHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	query := database.DB.Where("user_id = ?", userID)
	if idStr := c.Query("category_id"); idStr != "" {
		id, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil {
			BadRequest(c, "无效的类别 ID")
			return
		}
		query = query.Where("category_id = ?", id)
	}

	var entries []models.StoredPassword
	if err := query.Order("site_name ASC").Find(&entries).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询密码条目失败"))
		return
	}

	Success(c, entries)
}

// Get 获取密码条目详情
// @Summary 获取密码条目详情
// @Description 返回单个条目的元数据，不含密码明文或密文
// @Tags 密码保险箱
// @Produce json
// @Security BearerAuth
// @Param id path int true "条目 ID"
// @Success 200 {object} Response{data=models.StoredPassword} "获取成功"
// @Failure 404 {object} Response "条目不存在"
// @Router /api/v1/vault/passwords/{id} [get]
func (h *VaultHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的条目 ID")
		return
	}

	var entry models.StoredPassword
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&entry).Error; err != nil {
		NotFound(c, "条目不存在")
		return
	}

	Success(c, entry)
}

// Reveal 查看密码明文
// @Summary 查看密码明文
// @Description 现场解密单个条目的密码，仅在显式请求时返回明文
// @Tags 密码保险箱
// @Produce json
// @Security BearerAuth
// @Param id path int true "条目 ID"
// @Success 200 {object} Response{data=RevealResponse} "获取成功"
// @Failure 404 {object} Response "条目不存在"
// @Router /api/v1/vault/passwords/{id}/reveal [post]
func (h *VaultHandler) Reveal(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的条目 ID")
		return
	}

	var entry models.StoredPassword
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&entry).Error; err != nil {
		NotFound(c, "条目不存在")
		return
	}

	plaintext, err := h.crypto.Decrypt(entry.EncryptedPassword)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "解密失败"))
		return
	}

	Success(c, RevealResponse{ID: entry.ID, Password: plaintext})
}

// Update 更新密码条目
// @Summary 更新密码条目
// @Tags 密码保险箱
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "条目 ID"
// @Param request body StoredPasswordRequest true "密码条目"
// @Success 200 {object} Response{data=models.StoredPassword} "更新成功"
// @Failure 404 {object} Response "条目不存在"
// @Router /api/v1/vault/passwords/{id} [put]
func (h *VaultHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的条目 ID")
		return
	}

	var entry models.StoredPassword
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&entry).Error; err != nil {
		NotFound(c, "条目不存在")
		return
	}

	var req StoredPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	var cat models.PasswordCategory
	if err := database.DB.Where("id = ? AND user_id = ?", req.CategoryID, userID).First(&cat).Error; err != nil {
		NotFound(c, "类别不存在")
		return
	}

	encrypted, err := h.crypto.Encrypt(req.Password)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "加密密码失败"))
		return
	}

	updates := map[string]interface{}{
		"category_id":        cat.ID,
		"site_name":          strings.TrimSpace(req.SiteName),
		"username":           strings.TrimSpace(req.Username),
		"encrypted_password": encrypted,
		"site_url":           strings.TrimSpace(req.SiteURL),
		"notes":              strings.TrimSpace(req.Notes),
	}
	if err := database.DB.Model(&entry).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新密码条目失败"))
		return
	}

	SuccessWithMessage(c, "更新成功", entry)
}

// Delete 删除密码条目
// @Summary 删除密码条目
// @Tags 密码保险箱
// @Produce json
// @Security BearerAuth
// @Param id path int true "条目 ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "条目不存在"
// @Router /api/v1/vault/passwords/{id} [delete]
func (h *VaultHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的条目 ID")
		return
	}

	var entry models.StoredPassword
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&entry).Error; err != nil {
		NotFound(c, "条目不存在")
		return
	}

	if err := database.DB.Delete(&entry).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除密码条目失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
