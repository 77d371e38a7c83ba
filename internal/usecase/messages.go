package usecase

import (
	"fmt"
	"strings"
)

// HowToUse is sent on follow and for the help command.
const HowToUse = `
☆☆☆☆☆☆☆
    使い方
☆☆☆☆☆☆☆
1.買うもの送信して下さい
2.「見せて」と送信すると現在のリストを返します
3.「○○を消して」と送信すると○○をリストから消します
4.「消して」と送信するとリストを空にします
5.個別の削除は今後アップデート予定です。
6.「教えて」と送信するとこのメッセージを再度表示します
使い方のご意見募集中です。
よろしくお願いします！`

const (
	msgAck             = "はい！"
	msgEmptyList       = "リストは空だよ"
	msgListFailed      = "リストを取れなかったよ。もう一回試してね"
	msgDeleted         = "消したよ🗑"
	msgDeleteAllWait   = "はい！時間かかるからちょっと待っててね。"
	msgDeletedAll      = "全部消したよ"
	msgDeleteAllFailed = "全部消せなかったよ。もう一回試してね"
	msgTableMissing    = "リストが消えたままになっちゃった。管理者に連絡してね"
)

func formatList(items []string) string {
	if len(items) == 0 {
		return msgEmptyList
	}
	return "・" + strings.Join(items, "\n・")
}

func msgAdded(item string) string {
	return fmt.Sprintf("%sが追加されたよ", item)
}

func msgAddFailed(item string) string {
	return fmt.Sprintf("%sを追加できなかったよ。もう一回試してね", item)
}

func msgNotInList(item string) string {
	return fmt.Sprintf("%sはリストになかったよ", item)
}

func msgDeleteFailed(item string) string {
	return fmt.Sprintf("%sを消せなかったよ。もう一回試してね", item)
}
