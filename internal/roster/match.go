package roster

import (
	"strings"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

// 默认参数会丢弃非中文字符，设置 Fallback 让拼音和英文混写的姓名也能归一化
var pinyinArgs = func() pinyin.Args {
	args := pinyin.NewArgs()
	args.Fallback = func(r rune, _ pinyin.Args) []string {
		return []string{string(r)}
	}
	return args
}()

// normalizeName 把姓名规范化成小写无空格的拼音串。
// 这样「张三」「zhang san」「ZhangSan」都会归一到 "zhangsan"
func normalizeName(name string) string {
	var sb strings.Builder
	for _, part := range pinyin.LazyPinyin(name, pinyinArgs) {
		sb.WriteString(part)
	}
	normalized := strings.ToLower(sb.String())
	return strings.Join(strings.Fields(normalized), "")
}

// MatchCandidates 把候选班次上提取出来的姓名匹配到在职员工，
// 就地填写 staffID 和匹配置信度。原文完全一致记 1.0，拼音归一化后一致记 0.8，
// 同一个拼音对应多个员工时视为歧义，不做匹配。返回去重后的未匹配姓名列表
func MatchCandidates(candidates []domain.CandidateShift, staff []*domain.User) []string {
	byName := map[string]*domain.User{}
	byPinyin := map[string][]*domain.User{}
	for _, user := range staff {
		byName[user.FullName] = user
		key := normalizeName(user.FullName)
		byPinyin[key] = append(byPinyin[key], user)
	}

	unmatchedSeen := map[string]bool{}
	unmatched := []string{}
	for i := range candidates {
		c := &candidates[i]
		name := strings.TrimSpace(c.StaffName)
		if name == "" {
			continue
		}

		if user, ok := byName[name]; ok {
			c.StaffID = &user.ID
			c.MatchConfidence = 1.0
			continue
		}
		if matches := byPinyin[normalizeName(name)]; len(matches) == 1 {
			c.StaffID = &matches[0].ID
			c.MatchConfidence = 0.8
			continue
		}

		c.StaffID = nil
		c.MatchConfidence = 0
		if !unmatchedSeen[name] {
			unmatchedSeen[name] = true
			unmatched = append(unmatched, name)
		}
	}
	return unmatched
}
