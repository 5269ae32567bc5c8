package sentiment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xaenox/sentiment-bot/internal/models"
)

// Severity tells a front-end how to style a message.
type Severity int

const (
	Info Severity = iota
	Success
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Success:
		return "success"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

const (
	MsgTitle        = "🇻🇳 AI Phân Loại Cảm Xúc Tiếng Việt 😄😞😐"
	MsgIntro        = "AI sẽ học cảm xúc tiếng Việt từ chính bạn, dạy nó thêm khi nó chưa biết nhé!"
	MsgAskToTeach   = "Bạn có muốn dạy tôi biết cảm xúc của từ/câu này không?"
	MsgRetrainHint  = "💡 Tôi sẽ biết nghĩa từ này sau khi bạn bấm 'Huấn luyện lại mô hình'."
	MsgNotTrained   = "⚠️ Mô hình chưa đủ dữ liệu. Hãy thêm ví dụ và huấn luyện lại."
	MsgRetrained    = "✅ À, tôi biết nghĩa của các từ mới rồi! Cảm ơn bạn đã dạy tôi ❤️"
	MsgStorage      = "❌ Không thể đọc hoặc ghi dữ liệu huấn luyện. Kiểm tra lại nơi lưu trữ."
	MsgEmptyInput   = "✏️ Hãy nhập ít nhất một từ tiếng Việt."
	MsgInvalidLabel = "⚠️ Nhãn không hợp lệ. Hãy chọn positive, negative hoặc neutral."
	MsgCancelled    = "Đã bỏ qua, không lưu gì."
	MsgStale        = "💡 Có dữ liệu mới chưa được huấn luyện. Hãy huấn luyện lại mô hình."
	MsgNoData       = "📂 Chưa có dữ liệu huấn luyện."
	MsgTryHint      = "💡 Hãy thử nhập: 'Tôi vui quá' (positive), 'Tôi chán lắm' (negative), hoặc 'Tôi đang học' (neutral)."
	MsgUnexpected   = "❌ Đã có lỗi xảy ra. Vui lòng thử lại."
)

// Emoji is the face shown next to a label.
func Emoji(l models.Label) string {
	switch l {
	case models.Positive:
		return "😊"
	case models.Negative:
		return "😞"
	default:
		return "😐"
	}
}

func UnknownWordsMessage(unknown []string) string {
	return fmt.Sprintf("🤔 Tôi chưa học qua %d từ: %s.", len(unknown), strings.Join(unknown, ", "))
}

func PredictionMessage(p Prediction) string {
	return fmt.Sprintf("🔍 Kết quả dự đoán: %s %s", strings.ToUpper(string(p.Label)), Emoji(p.Label))
}

func SavedMessage(rawText string, label models.Label) string {
	return fmt.Sprintf("✅ Đã lưu từ mới: '%s' → %s.", rawText, label)
}

func SuggestionMessage(label models.Label) string {
	return fmt.Sprintf("🤖 Gợi ý: %s %s", label, Emoji(label))
}

func InsufficientDataMessage(min int) string {
	return fmt.Sprintf("⚠️ Cần ít nhất %d mẫu để huấn luyện.", min)
}

// ErrorMessage maps an operation error to what the user sees.
func ErrorMessage(err error, minExamples int) (string, Severity) {
	switch {
	case errors.Is(err, ErrStorageUnavailable):
		return MsgStorage, Error
	case errors.Is(err, ErrInsufficientData):
		return InsufficientDataMessage(minExamples), Warning
	case errors.Is(err, ErrModelNotTrained):
		return MsgNotTrained, Warning
	case errors.Is(err, ErrInvalidLabel):
		return MsgInvalidLabel, Warning
	case errors.Is(err, ErrEmptyInput):
		return MsgEmptyInput, Warning
	default:
		return MsgUnexpected, Error
	}
}
