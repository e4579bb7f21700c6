package forecast

import (
	"errors"
	"fmt"

	"github.com/couchcryptid/jma-forecast/internal/domain"
)

// Localized texts rendered in place of a forecast list.
const (
	MsgNoRecords    = "DBにデータがありません。APIから取得してください。"
	MsgEmpty        = "データがありません"
	MsgStoreOff     = "ローカルDBは無効です。APIから取得してください。"
	MsgUnknownArea  = "地域コードが見つかりません"
	directoryPrefix = "データ取得エラー"
	errorPrefix     = "エラー"
)

// ErrorMessage converts an error from Refresh or Cached into the text shown
// to the user.
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoRecords):
		return MsgNoRecords
	case errors.Is(err, domain.ErrStoreDisabled):
		return MsgStoreOff
	case errors.Is(err, domain.ErrUnknownArea):
		return fmt.Sprintf("%s: %v", MsgUnknownArea, err)
	default:
		return fmt.Sprintf("%s: %v", errorPrefix, err)
	}
}

// DirectoryErrorMessage is the text shown when the area directory cannot be loaded.
func DirectoryErrorMessage(err error) string {
	return fmt.Sprintf("%s: %v", directoryPrefix, err)
}
