package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/kharido-next/internal/models"
)

const (
	authStateKeyPrefix = "auth:user:"
	authStateCacheTTL  = 10 * time.Minute
)

// UserAuthState 用户鉴权快照，仅存于 Redis
// 命中时中间件无需回查数据库
type UserAuthState struct {
	UserID    uint   `json:"user_id"`
	Status    string `json:"status"`
	UpdatedAt int64  `json:"updated_at"`
}

func userAuthStateKey(userID uint) string {
	return authStateKeyPrefix + strconv.FormatUint(uint64(userID), 10)
}

// BuildUserAuthState 把用户模型压缩为鉴权快照
func BuildUserAuthState(user *models.User) *UserAuthState {
	if user == nil {
		return nil
	}
	return &UserAuthState{
		UserID:    user.ID,
		Status:    user.Status,
		UpdatedAt: time.Now().Unix(),
	}
}

// GetUserAuthState 获取用户鉴权快照，第二个返回值表示是否命中
func GetUserAuthState(ctx context.Context, userID uint) (*UserAuthState, bool, error) {
	if userID == 0 {
		return nil, false, nil
	}
	state := &UserAuthState{}
	hit, err := GetJSON(ctx, userAuthStateKey(userID), state)
	if !hit || err != nil {
		return nil, hit, err
	}
	return state, true, nil
}

// SetUserAuthState 缓存用户鉴权快照
func SetUserAuthState(ctx context.Context, state *UserAuthState) error {
	if state == nil || state.UserID == 0 {
		return nil
	}
	return SetJSON(ctx, userAuthStateKey(state.UserID), state, authStateCacheTTL)
}

// DelUserAuthState 删除用户鉴权快照（状态变更后调用）
func DelUserAuthState(ctx context.Context, userID uint) error {
	if userID == 0 {
		return nil
	}
	return Del(ctx, userAuthStateKey(userID))
}
