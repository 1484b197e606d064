package clock

// Expiry 到期通知
type Expiry struct {
	TimerId int64
	NowMs   int64 // 触发时的时间戳 毫秒
	Data    any
}

type entry struct {
	id         int64          // ID
	when       int64          // 到期时间戳 毫秒
	data       any            // 数据
	receiver   chan<- *Expiry // 接收方
	prev, next *entry         // 双向链表
}

func (e *entry) removeFromList() bool {
	if e.prev == nil || e.next == nil {
		return false
	}
	e.prev.next = e.next
	e.next.prev = e.prev
	e.prev = nil
	e.next = nil
	return true
}

type entryList struct {
	root *entry //哨兵
}

func newEntryList() *entryList {
	l := new(entryList)
	l.root = new(entry)
	l.root.prev = l.root
	l.root.next = l.root
	return l
}

func (l *entryList) PushBack(e *entry) {
	tail := l.root.prev
	tail.next = e
	e.prev = tail
	e.next = l.root
	l.root.prev = e
}

func (l *entryList) Remove(e *entry) bool {
	if e == l.root {
		return false
	}
	return e.removeFromList()
}

func (l *entryList) IsEmpty() bool {
	return l.root.next == l.root
}

// PopRange 删除并遍历链表中的节点, fn里可以往其他链表插入
func (l *entryList) PopRange(fn func(e *entry) bool) {
	for !l.IsEmpty() {
		e := l.root.next
		l.Remove(e)
		if !fn(e) {
			break
		}
	}
}
