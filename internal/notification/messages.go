package notification

import (
	"fmt"
	"os"
	"strings"
)

// message keys
const (
	msgTitle          = "title"
	msgActiveChanged  = "active_changed"
	msgNoActive       = "no_active"
	msgProfileAdded   = "profile_added"
	msgProfileRemoved = "profile_removed"
	msgUnreadable     = "active_unreadable"
	msgSwitched       = "profile_switched"
	msgSwitchFailed   = "switch_failed"
)

var catalogs = map[string]map[string]string{
	"en": {
		msgTitle:          "CCCS",
		msgActiveChanged:  "Active profile: %s",
		msgNoActive:       "Active configuration no longer matches any profile",
		msgProfileAdded:   "New profile: %s",
		msgProfileRemoved: "Profile removed: %s",
		msgUnreadable:     "settings.json cannot be read",
		msgSwitched:       "Switched to profile: %s",
		msgSwitchFailed:   "Failed to switch to %s (%s)",
	},
	"zh": {
		msgTitle:          "CCCS",
		msgActiveChanged:  "当前配置: %s",
		msgNoActive:       "当前配置与任何配置文件都不匹配",
		msgProfileAdded:   "新配置: %s",
		msgProfileRemoved: "配置已删除: %s",
		msgUnreadable:     "无法读取 settings.json",
		msgSwitched:       "已切换到配置: %s",
		msgSwitchFailed:   "切换到 %s 失败 (%s)",
	},
	"zh-TW": {
		msgTitle:          "CCCS",
		msgActiveChanged:  "目前設定: %s",
		msgNoActive:       "目前設定與任何設定檔都不相符",
		msgProfileAdded:   "新設定: %s",
		msgProfileRemoved: "設定已刪除: %s",
		msgUnreadable:     "無法讀取 settings.json",
		msgSwitched:       "已切換到設定: %s",
		msgSwitchFailed:   "切換到 %s 失敗 (%s)",
	},
}

// Messages renders notification text in one language
type Messages struct {
	lang string
}

// NewMessages returns messages for lang; empty lang uses the system locale
func NewMessages(lang string) Messages {
	if lang == "" {
		lang = systemLanguage()
	}
	switch lang {
	case "zh", "zh-CN":
		lang = "zh"
	case "zh-TW":
	default:
		lang = "en"
	}
	return Messages{lang: lang}
}

// Language returns the resolved catalog language
func (m Messages) Language() string {
	return m.lang
}

func (m Messages) get(key string, args ...any) string {
	text, ok := catalogs[m.lang][key]
	if !ok {
		text = catalogs["en"][key]
	}
	if len(args) == 0 {
		return text
	}
	return fmt.Sprintf(text, args...)
}

// systemLanguage inspects LC_ALL and LANG for a Chinese locale
func systemLanguage() string {
	for _, env := range []string{"LC_ALL", "LANG"} {
		locale := os.Getenv(env)
		if locale == "" {
			continue
		}
		if strings.HasPrefix(locale, "zh_TW") || strings.HasPrefix(locale, "zh_HK") {
			return "zh-TW"
		}
		if strings.HasPrefix(locale, "zh") {
			return "zh"
		}
		return "en"
	}
	return "en"
}
