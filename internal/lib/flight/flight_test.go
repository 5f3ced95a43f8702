package flight

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroup(t *testing.T) {
	g := NewGroup()

	assert.True(t, g.TryBegin("sid:nlp"))
	assert.False(t, g.TryBegin("sid:nlp"), "повторный запрос по занятому ключу должен отклоняться")
	assert.True(t, g.TryBegin("sid:ocr"), "другой ключ не должен блокироваться")

	g.End("sid:nlp")
	assert.True(t, g.TryBegin("sid:nlp"), "после End ключ снова свободен")
}
